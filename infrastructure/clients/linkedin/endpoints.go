package linkedin

import (
	"errors"
	"fmt"

	"post-manager/domain/model"
	"post-manager/infrastructure/logger"

	"github.com/google/go-querystring/query"
)

const profileProjection = "/me?projection=(id,localizedFirstName,localizedLastName,localizedHeadline,firstName,lastName,headline,profilePicture(displayImage~:playableStreams))"

type sharesQuery struct {
	Q              string `url:"q"`
	Owners         string `url:"owners"`
	SharesPerOwner int    `url:"sharesPerOwner,omitempty"`
}

type authorsQuery struct {
	Q       string `url:"q"`
	Authors string `url:"authors"`
	Status  string `url:"status,omitempty"`
}

type authorQuery struct {
	Q              string `url:"q"`
	Author         string `url:"author"`
	LifecycleState string `url:"lifecycleState,omitempty"`
}

type actorQuery struct {
	Q     string `url:"q"`
	Actor string `url:"actor"`
}

type projectionQuery struct {
	Projection string `url:"projection"`
}

// Catalog turns the configured priority lists into concrete endpoint specs.
type Catalog struct {
	postPriority      []model.SourceKind
	scheduledPriority []model.SourceKind
}

func NewCatalog(postPriority, scheduledPriority []string) *Catalog {
	post := parsePriority(postPriority)
	if len(post) == 0 {
		post = model.AllSourceKinds
	}
	scheduled := parsePriority(scheduledPriority)
	if len(scheduled) == 0 {
		scheduled = []model.SourceKind{model.KindUGCPosts, model.KindStructuredFeed, model.KindSettingsBlob}
	}
	return &Catalog{postPriority: post, scheduledPriority: scheduled}
}

func parsePriority(names []string) []model.SourceKind {
	seen := map[model.SourceKind]bool{}
	var kinds []model.SourceKind
	for _, n := range names {
		k, ok := model.ParseSourceKind(n)
		if !ok {
			logger.GetLogger().WithField("kind", n).Warn("Ignoring unknown endpoint kind in cascade priority")
			continue
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds
}

func (c *Catalog) ProfileEndpoint() string { return profileProjection }

// PostEndpoints lists post sources in priority order. Member scoped sources are
// left out when the member is unknown.
func (c *Catalog) PostEndpoints(profile *model.Profile) []model.EndpointSpec {
	return c.build(c.postPriority, profile.MemberURN(), false)
}

// ScheduledEndpoints lists sources able to return scheduled posts.
func (c *Catalog) ScheduledEndpoints(profile *model.Profile) []model.EndpointSpec {
	return c.build(c.scheduledPriority, profile.MemberURN(), true)
}

func (c *Catalog) build(kinds []model.SourceKind, urn string, scheduled bool) []model.EndpointSpec {
	specs := make([]model.EndpointSpec, 0, len(kinds))
	for _, k := range kinds {
		path, err := endpointPath(k, urn, scheduled)
		if err != nil {
			logger.GetLogger().WithField("kind", k).WithField("error", err).Debug("Skipping endpoint")
			continue
		}
		specs = append(specs, model.EndpointSpec{Path: path, Kind: k})
	}
	return specs
}

var errMemberRequired = errors.New("member urn required")

func endpointPath(kind model.SourceKind, urn string, scheduled bool) (string, error) {
	var (
		base string
		opts interface{}
	)
	switch kind {
	case model.KindShares:
		if urn == "" {
			return "", errMemberRequired
		}
		base, opts = "/shares", sharesQuery{Q: "owners", Owners: urn, SharesPerOwner: 50}
	case model.KindUGCPosts:
		if urn == "" {
			return "", errMemberRequired
		}
		q := authorsQuery{Q: "authors", Authors: fmt.Sprintf("List(%s)", urn)}
		if scheduled {
			q.Status = "SCHEDULED"
		}
		base, opts = "/ugcPosts", q
	case model.KindStructuredFeed:
		if urn == "" {
			return "", errMemberRequired
		}
		q := authorQuery{Q: "author", Author: urn}
		if scheduled {
			q.LifecycleState = "SCHEDULED"
		}
		base, opts = "/posts", q
	case model.KindConnectionsCombined:
		base, opts = "/me", projectionQuery{Projection: "(id,localizedFirstName,localizedLastName,activities)"}
	case model.KindGenericLog:
		if urn == "" {
			return "", errMemberRequired
		}
		base, opts = "/socialActions", actorQuery{Q: "actor", Actor: urn}
	case model.KindSettingsBlob:
		return "/me/settings", nil
	case model.KindProfileOnly:
		return "/me", nil
	default:
		return "", fmt.Errorf("unknown source kind %q", kind)
	}

	v, err := query.Values(opts)
	if err != nil {
		return "", fmt.Errorf("encode %s query: %w", kind, err)
	}
	return base + "?" + v.Encode(), nil
}
