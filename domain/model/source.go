package model

import "strings"

// SourceKind tags which endpoint family produced a payload.
type SourceKind string

const (
	KindShares              SourceKind = "shares"
	KindUGCPosts            SourceKind = "ugc-posts"
	KindStructuredFeed      SourceKind = "structured-feed"
	KindConnectionsCombined SourceKind = "connections-combined"
	KindGenericLog          SourceKind = "generic-log"
	KindSettingsBlob        SourceKind = "settings-blob"
	KindProfileOnly         SourceKind = "profile-only"
)

// AllSourceKinds lists every kind in the default post priority order.
var AllSourceKinds = []SourceKind{
	KindShares,
	KindUGCPosts,
	KindStructuredFeed,
	KindConnectionsCombined,
	KindGenericLog,
	KindSettingsBlob,
	KindProfileOnly,
}

// ParseSourceKind maps a configured name onto the closed tag set.
func ParseSourceKind(s string) (SourceKind, bool) {
	k := SourceKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllSourceKinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// EndpointSpec is one candidate in a cascade.
type EndpointSpec struct {
	Path string     `json:"path"`
	Kind SourceKind `json:"kind"`
}

// SourcedPayload is the raw body of the first successful attempt.
type SourcedPayload struct {
	Payload []byte     `json:"-"`
	Kind    SourceKind `json:"kind"`
	Ordinal int        `json:"ordinal"`
	Path    string     `json:"path"`
}
