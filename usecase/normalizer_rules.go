package usecase

import "post-manager/domain/model"

// extractionRule is the field precedence table for one source kind.
// Each list is tried in order and the first usable value wins.
type extractionRule struct {
	collections   []string
	id            []string
	title         []string
	content       []string
	status        []string
	created       []string
	scheduled     []string
	likes         []string
	comments      []string
	shares        []string
	defaultStatus model.PostStatus
}

const ugcShareContent = `specificContent.com\.linkedin\.ugc\.ShareContent`

var (
	likePaths = []string{
		"totalSocialActivityCounts.numLikes",
		"totalSocialActivityCounts.likes",
		"likesSummary.totalLikes",
		"engagement.likes",
		"numLikes",
		"likes",
		"likeCount",
	}
	commentPaths = []string{
		"totalSocialActivityCounts.numComments",
		"totalSocialActivityCounts.comments",
		"commentsSummary.aggregatedTotalComments",
		"commentsSummary.totalFirstLevelComments",
		"engagement.comments",
		"numComments",
		"comments",
		"commentCount",
	}
	sharePaths = []string{
		"totalSocialActivityCounts.numShares",
		"totalSocialActivityCounts.shares",
		"engagement.shares",
		"numShares",
		"shares",
		"shareCount",
	}
)

// genericRule is used by the recovery pass on arrays found anywhere in a payload.
var genericRule = extractionRule{
	id:    []string{"id", "urn", "$URN", "activity", "entityUrn"},
	title: []string{"title", "title.text", "subject", "name", "headline"},
	content: []string{
		"content",
		"text.text",
		"text",
		"commentary.text",
		"commentary",
		"message.text",
		"message",
		"description.text",
		"description",
		"body",
	},
	status: []string{"status", "lifecycleState", "state"},
	created: []string{
		"createdAt",
		"created.time",
		"created",
		"createdTime",
		"publishedAt",
		"firstPublishedAt",
		"lastModified.time",
		"date",
		"time",
		"timestamp",
	},
	scheduled:     []string{"scheduledDate", "scheduledAt", "scheduledPublishTime", "scheduledTime", "publishAt"},
	likes:         likePaths,
	comments:      commentPaths,
	shares:        sharePaths,
	defaultStatus: model.StatusPublished,
}

var normalizerRules = map[model.SourceKind]extractionRule{
	model.KindShares: {
		collections: []string{"elements", "values"},
		id:          []string{"id", "activity", "$URN"},
		title:       []string{"content.title", "subject", "title"},
		content:     []string{"text.text", "text", "commentary.text", "message.text", "content"},
		status:      []string{"lifecycleState", "status"},
		created:     []string{"created.time", "lastModified.time", "createdAt"},
		scheduled:   []string{"scheduledAt", "distribution.scheduledAt"},
		likes:       likePaths,
		comments:    commentPaths,
		shares:      sharePaths,

		defaultStatus: model.StatusPublished,
	},
	model.KindUGCPosts: {
		collections: []string{"elements"},
		id:          []string{"id", "$URN"},
		title: []string{
			ugcShareContent + ".media.0.title.text",
			ugcShareContent + ".title.text",
			"title",
		},
		content: []string{
			ugcShareContent + ".shareCommentary.text",
			"text.text",
			"commentary",
		},
		status:    []string{"lifecycleState"},
		created:   []string{"created.time", "firstPublishedAt", "lastModified.time"},
		scheduled: []string{"scheduledPublishTime", "scheduledAt"},
		likes:     likePaths,
		comments:  commentPaths,
		shares:    sharePaths,

		defaultStatus: model.StatusPublished,
	},
	model.KindStructuredFeed: {
		collections: []string{"elements", "data"},
		id:          []string{"id"},
		title:       []string{"content.article.title", "title"},
		content:     []string{"commentary", "content.article.description", "text.text"},
		status:      []string{"lifecycleState", "status"},
		created:     []string{"createdAt", "publishedAt", "lastModifiedAt"},
		scheduled:   []string{"scheduledPublishTime", "scheduledAt"},
		likes:       likePaths,
		comments:    commentPaths,
		shares:      sharePaths,

		defaultStatus: model.StatusPublished,
	},
	model.KindConnectionsCombined: {
		collections: []string{"activities", "activities.elements", "activity.elements"},
		id:          []string{"id", "activity", "urn"},
		title:       []string{"title"},
		content:     []string{"text.text", "text", "message.text", "commentary"},
		status:      []string{"status"},
		created:     []string{"time", "created.time", "createdAt"},
		likes:       likePaths,
		comments:    commentPaths,
		shares:      sharePaths,

		defaultStatus: model.StatusPublished,
	},
	model.KindGenericLog: {
		collections: []string{"elements", "results"},
		id:          []string{"target", "$URN", "id"},
		title:       []string{"title"},
		content:     []string{"comment.message.text", "message.text", "text", "content"},
		status:      []string{"status"},
		created:     []string{"created.time", "lastModified.time", "time"},
		likes:       likePaths,
		comments:    commentPaths,
		shares:      sharePaths,

		defaultStatus: model.StatusPublished,
	},
	model.KindSettingsBlob: {
		collections: []string{"scheduledPosts", "drafts", "posts", "settings.scheduledPosts", "settings.drafts"},
		id:          []string{"id"},
		title:       []string{"title"},
		content:     []string{"content", "text", "commentary"},
		status:      []string{"status", "lifecycleState"},
		created:     []string{"createdAt", "created.time"},
		scheduled:   []string{"scheduledDate", "scheduledAt", "scheduledPublishTime"},
		likes:       likePaths,
		comments:    commentPaths,
		shares:      sharePaths,

		defaultStatus: model.StatusDraft,
	},
	model.KindProfileOnly: {
		collections: []string{"posts", "recentActivity", "activities"},
		id:          []string{"id"},
		title:       []string{"title"},
		content:     []string{"text", "content", "commentary"},
		status:      []string{"status"},
		created:     []string{"createdAt", "created.time", "time"},
		likes:       likePaths,
		comments:    commentPaths,
		shares:      sharePaths,

		defaultStatus: model.StatusPublished,
	},
}

// postLikeKeys marks an object as a plausible post during recovery.
var postLikeKeys = []string{"title", "content", "text", "name", "description", "id"}

var statusAliases = map[string]model.PostStatus{
	"PUBLISHED": model.StatusPublished,
	"PUBLISH":   model.StatusPublished,
	"LIVE":      model.StatusPublished,
	"ACTIVE":    model.StatusPublished,
	"PUBLIC":    model.StatusPublished,
	"DRAFT":     model.StatusDraft,
	"DRAFTED":   model.StatusDraft,
	"PENDING":   model.StatusDraft,
	"SCHEDULED": model.StatusScheduled,
}
