package usecase

import (
	"math"
	"strconv"
	"strings"
	"time"

	"post-manager/domain/model"
	"post-manager/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tidwall/gjson"
)

const (
	maxRecoveryDepth = 6
	postIDPrefix     = "linkedin_"
	// Epoch values at or above this are milliseconds.
	epochMillisThreshold = 1e11
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

type IResponseNormalizer interface {
	Normalize(payload []byte, kind model.SourceKind) []model.Post
	NormalizeProfile(payload []byte) (*model.Profile, bool)
}

// ResponseNormalizer maps source specific payloads onto model.Post.
type ResponseNormalizer struct {
	clock  clockwork.Clock
	locale string
}

func NewResponseNormalizer(clock clockwork.Clock, preferredLocale string) *ResponseNormalizer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ResponseNormalizer{clock: clock, locale: preferredLocale}
}

// Normalize never fails. An unusable payload yields an empty, non-nil slice.
func (n *ResponseNormalizer) Normalize(payload []byte, kind model.SourceKind) []model.Post {
	posts := []model.Post{}
	if !gjson.ValidBytes(payload) {
		return posts
	}
	doc := gjson.ParseBytes(payload)
	now := n.clock.Now().UTC()

	if rule, ok := normalizerRules[kind]; ok {
		posts = n.apply(rule, collectItems(doc, rule.collections), now)
	}
	if len(posts) > 0 {
		return posts
	}

	arr, ok := findPostLikeArray(doc, 0)
	if !ok {
		return posts
	}
	posts = n.apply(genericRule, objectsOf(arr), now)
	logger.GetLogger().WithFields(map[string]interface{}{
		"kind":  kind,
		"count": len(posts),
	}).Info("Recovered posts from unrecognised payload shape")
	return posts
}

func (n *ResponseNormalizer) apply(rule extractionRule, items []gjson.Result, now time.Time) []model.Post {
	posts := make([]model.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, toPost(item, rule, now))
	}
	return posts
}

func toPost(item gjson.Result, rule extractionRule, now time.Time) model.Post {
	content, hasContent := firstString(item, rule.content)
	if !hasContent {
		content = model.DefaultPostContent
	}

	title, ok := firstString(item, rule.title)
	if !ok {
		title = deriveTitle(content, hasContent)
	}

	status, explicit := model.PostStatus(""), false
	if raw, ok := firstString(item, rule.status); ok {
		status, explicit = mapStatus(raw)
	}
	scheduledAt, hasSchedule := firstTime(item, rule.scheduled)
	if !explicit {
		status = rule.defaultStatus
		if hasSchedule {
			status = model.StatusScheduled
		}
	}

	post := model.Post{
		ID:      postID(item, rule.id),
		Title:   capTitle(title),
		Content: content,
		Status:  status,
		Engagement: model.Engagement{
			Likes:    firstCount(item, rule.likes),
			Comments: firstCount(item, rule.comments),
			Shares:   firstCount(item, rule.shares),
		},
	}
	if created, ok := firstTime(item, rule.created); ok {
		post.CreatedAt = created
	} else {
		post.CreatedAt = now
	}

	// scheduledDate is present exactly when status is scheduled.
	if post.Status == model.StatusScheduled {
		if hasSchedule {
			post.ScheduledDate = &scheduledAt
		} else {
			post.Status = model.StatusDraft
		}
	}
	return post
}

func collectItems(doc gjson.Result, collections []string) []gjson.Result {
	if doc.IsArray() {
		return objectsOf(doc)
	}
	for _, path := range collections {
		r := doc.Get(path)
		if !r.IsArray() {
			continue
		}
		if items := objectsOf(r); len(items) > 0 {
			return items
		}
	}
	return nil
}

func objectsOf(arr gjson.Result) []gjson.Result {
	var out []gjson.Result
	for _, el := range arr.Array() {
		if el.IsObject() {
			out = append(out, el)
		}
	}
	return out
}

// findPostLikeArray walks the document in order, depth first, and returns the
// first array whose first element looks like a post.
func findPostLikeArray(r gjson.Result, depth int) (gjson.Result, bool) {
	if r.IsArray() {
		if arr := r.Array(); len(arr) > 0 && looksPostLike(arr[0]) {
			return r, true
		}
	}
	if depth >= maxRecoveryDepth || !(r.IsArray() || r.IsObject()) {
		return gjson.Result{}, false
	}
	var found gjson.Result
	var ok bool
	r.ForEach(func(_, v gjson.Result) bool {
		if !(v.IsArray() || v.IsObject()) {
			return true
		}
		found, ok = findPostLikeArray(v, depth+1)
		return !ok
	})
	return found, ok
}

func looksPostLike(v gjson.Result) bool {
	if !v.IsObject() {
		return false
	}
	for _, k := range postLikeKeys {
		if v.Get(k).Exists() {
			return true
		}
	}
	return false
}

func firstString(item gjson.Result, paths []string) (string, bool) {
	for _, p := range paths {
		r := item.Get(p)
		if r.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(r.Str); s != "" {
			return s, true
		}
	}
	return "", false
}

func firstTime(item gjson.Result, paths []string) (time.Time, bool) {
	for _, p := range paths {
		if t, ok := parseTimestamp(item.Get(p)); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTimestamp(r gjson.Result) (time.Time, bool) {
	switch r.Type {
	case gjson.Number:
		return fromEpoch(r.Num)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromEpoch(f)
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func fromEpoch(v float64) (time.Time, bool) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, false
	}
	if v >= epochMillisThreshold {
		return time.UnixMilli(int64(v)).UTC(), true
	}
	return time.Unix(int64(v), 0).UTC(), true
}

// firstCount returns the first numeric value found, clamped at zero.
func firstCount(item gjson.Result, paths []string) uint {
	for _, p := range paths {
		r := item.Get(p)
		var v float64
		switch r.Type {
		case gjson.Number:
			v = r.Num
		case gjson.String:
			f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
			if err != nil {
				continue
			}
			v = f
		default:
			continue
		}
		if v <= 0 || math.IsNaN(v) {
			return 0
		}
		if v >= math.MaxUint32 {
			return math.MaxUint32
		}
		return uint(v)
	}
	return 0
}

func mapStatus(raw string) (model.PostStatus, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if st, ok := statusAliases[key]; ok {
		return st, true
	}
	if strings.Contains(key, "SCHEDULE") {
		return model.StatusScheduled, true
	}
	return "", false
}

func postID(item gjson.Result, paths []string) string {
	for _, p := range paths {
		r := item.Get(p)
		if r.Type != gjson.String && r.Type != gjson.Number {
			continue
		}
		raw := strings.TrimSpace(r.String())
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, postIDPrefix) {
			return raw
		}
		return postIDPrefix + raw
	}
	return postIDPrefix + uuid.NewString()
}

func deriveTitle(content string, hasContent bool) string {
	if !hasContent {
		return model.DefaultPostTitle
	}
	r := []rune(content)
	if len(r) > model.DerivedTitleLength {
		return string(r[:model.DerivedTitleLength]) + "..."
	}
	return content
}

func capTitle(title string) string {
	r := []rune(title)
	if len(r) > model.MaxTitleLength {
		return string(r[:model.MaxTitleLength-3]) + "..."
	}
	return title
}

// NormalizeProfile reads a /me answer. Localized names are preferred, then
// the multi-locale maps keyed by the configured or preferred locale.
func (n *ResponseNormalizer) NormalizeProfile(payload []byte) (*model.Profile, bool) {
	if !gjson.ValidBytes(payload) {
		return nil, false
	}
	doc := gjson.ParseBytes(payload)
	id := strings.TrimSpace(doc.Get("id").String())
	if id == "" {
		return nil, false
	}
	return &model.Profile{
		ID:         id,
		FirstName:  n.localized(doc, "localizedFirstName", "firstName"),
		LastName:   n.localized(doc, "localizedLastName", "lastName"),
		Headline:   n.localized(doc, "localizedHeadline", "headline"),
		PictureURL: pictureURL(doc),
	}, true
}

func (n *ResponseNormalizer) localized(doc gjson.Result, flat, field string) string {
	if s, ok := firstString(doc, []string{flat, field}); ok {
		return s
	}
	r := doc.Get(field)
	if !r.IsObject() {
		return ""
	}
	values := r.Get("localized")
	for _, key := range []string{n.locale, localeKey(r.Get("preferredLocale"))} {
		if key == "" {
			continue
		}
		if v := values.Get(key); v.Type == gjson.String {
			return v.Str
		}
	}
	var out string
	values.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			out = v.Str
			return false
		}
		return true
	})
	return out
}

func localeKey(pref gjson.Result) string {
	lang, country := pref.Get("language").String(), pref.Get("country").String()
	if lang == "" {
		return ""
	}
	if country == "" {
		return lang
	}
	return lang + "_" + country
}

// pictureURL takes the last, and largest, rendition of the display image.
func pictureURL(doc gjson.Result) string {
	elements := doc.Get(`profilePicture.displayImage\~.elements`).Array()
	for i := len(elements) - 1; i >= 0; i-- {
		if u := elements[i].Get("identifiers.0.identifier").String(); u != "" {
			return u
		}
	}
	return ""
}
