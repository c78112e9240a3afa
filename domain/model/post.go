package model

import "time"

type PostStatus string

const (
	StatusPublished PostStatus = "published"
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
)

const (
	DefaultPostTitle   = "LinkedIn Post"
	DefaultPostContent = "No content available"
	MaxTitleLength     = 100
	DerivedTitleLength = 50
)

type Engagement struct {
	Likes    uint `json:"likes"`
	Comments uint `json:"comments"`
	Shares   uint `json:"shares"`
}

// Post is the canonical record returned for every source shape.
// ScheduledDate is set if and only if Status is StatusScheduled.
type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Status        PostStatus `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	Engagement    Engagement `json:"engagement"`
}

// Profile is the authenticated member as returned by /me.
type Profile struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Headline   string `json:"headline,omitempty"`
	PictureURL string `json:"pictureUrl,omitempty"`
	Simulated  bool   `json:"simulated"`
}

// MemberURN returns the person URN used by owner scoped endpoints.
func (p *Profile) MemberURN() string {
	if p == nil || p.ID == "" {
		return ""
	}
	return "urn:li:person:" + p.ID
}
