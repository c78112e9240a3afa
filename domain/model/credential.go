package model

import "time"

// TokenOrigin tells how a credential was obtained.
type TokenOrigin string

const (
	OriginOAuth  TokenOrigin = "oauth"
	OriginManual TokenOrigin = "manual"
)

// Credential is the access token currently authorising upstream calls.
type Credential struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Origin      TokenOrigin `json:"origin"`
}

// Expired reports whether the credential is no longer usable at now.
func (c *Credential) Expired(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return true
	}
	return !now.Before(c.ExpiresAt)
}

type SessionState string

const (
	SessionLoggedOut       SessionState = "logged-out"
	SessionPendingCallback SessionState = "pending-callback"
	SessionLoggedIn        SessionState = "logged-in"
)

// SessionEvent is published to subscribers on every session transition.
type SessionEvent struct {
	Type      string       `json:"type"`
	State     SessionState `json:"state"`
	Origin    TokenOrigin  `json:"origin,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	At        time.Time    `json:"at"`
}
