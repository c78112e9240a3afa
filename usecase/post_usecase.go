package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"post-manager/domain/dto"
	"post-manager/domain/model"
	"post-manager/domain/repository"
	"post-manager/infrastructure/logger"

	"github.com/jonboulle/clockwork"
	"github.com/tidwall/gjson"
)

const ugcPostsPath = "/ugcPosts"

// IPostUsecase is the retrieval contract exposed to the HTTP layer.
// Every method resolves, substituting simulated data on failure.
type IPostUsecase interface {
	GetProfile(ctx context.Context) *model.Profile
	GetPosts(ctx context.Context) []model.Post
	GetScheduledPosts(ctx context.Context) []model.Post
	CreatePost(ctx context.Context, data dto.PostPayload) dto.PostPayload
	UpdatePost(ctx context.Context, id string, data dto.PostPayload) dto.PostPayload
	DeletePost(ctx context.Context, id string) dto.DeleteAck
}

type PostUsecase struct {
	session    ISessionManager
	executor   repository.IRequestExecutor
	catalog    repository.IEndpointCatalog
	cascade    IEndpointCascade
	normalizer IResponseNormalizer
	sim        *Simulation
	clock      clockwork.Clock
	liveWrites bool
}

func NewPostUsecase(
	session ISessionManager,
	executor repository.IRequestExecutor,
	catalog repository.IEndpointCatalog,
	cascade IEndpointCascade,
	normalizer IResponseNormalizer,
	sim *Simulation,
	clock clockwork.Clock,
	liveWrites bool,
) IPostUsecase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PostUsecase{
		session:    session,
		executor:   executor,
		catalog:    catalog,
		cascade:    cascade,
		normalizer: normalizer,
		sim:        sim,
		clock:      clock,
		liveWrites: liveWrites,
	}
}

func (u *PostUsecase) GetProfile(ctx context.Context) *model.Profile {
	lg := logger.GetLogger()
	token, ok := u.session.GetToken(ctx)
	if !ok {
		lg.WithField("error", model.ErrNotAuthenticated).Info("Using simulated profile")
		return u.sim.Profile(ctx)
	}
	if profile := u.fetchProfile(ctx, token); profile != nil {
		return profile
	}
	return u.sim.Profile(ctx)
}

func (u *PostUsecase) fetchProfile(ctx context.Context, token string) *model.Profile {
	lg := logger.GetLogger()
	body, err := u.executor.Get(ctx, u.catalog.ProfileEndpoint(), token)
	if err != nil {
		lg.WithField("error", err).Warn("Error fetching LinkedIn profile")
		return nil
	}
	profile, ok := u.normalizer.NormalizeProfile(body)
	if !ok {
		lg.Warn("LinkedIn profile answer has no member id")
		return nil
	}
	return profile
}

func (u *PostUsecase) GetPosts(ctx context.Context) []model.Post {
	posts, err := u.retrieve(ctx, u.catalog.PostEndpoints)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Falling back to simulated posts")
		return u.sim.Posts(ctx)
	}
	return posts
}

func (u *PostUsecase) GetScheduledPosts(ctx context.Context) []model.Post {
	posts, err := u.retrieve(ctx, u.catalog.ScheduledEndpoints)
	if err == nil {
		posts = onlyScheduled(posts)
		if len(posts) == 0 {
			err = model.ErrNormalizationEmpty
		}
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Falling back to simulated scheduled posts")
		return u.sim.ScheduledPosts(ctx)
	}
	return posts
}

// retrieve runs token lookup, cascade and normalization. Any error means the
// caller should use simulated data.
func (u *PostUsecase) retrieve(ctx context.Context, endpoints func(*model.Profile) []model.EndpointSpec) ([]model.Post, error) {
	token, ok := u.session.GetToken(ctx)
	if !ok {
		return nil, model.ErrNotAuthenticated
	}
	profile := u.fetchProfile(ctx, token)

	src, err := u.cascade.FetchFirstSuccessful(ctx, endpoints(profile), token)
	if err != nil {
		return nil, err
	}
	posts := u.normalizer.Normalize(src.Payload, src.Kind)
	if len(posts) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Kind, model.ErrNormalizationEmpty)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"kind":  src.Kind,
		"count": len(posts),
	}).Info("Loaded posts from LinkedIn")
	return posts, nil
}

func onlyScheduled(posts []model.Post) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Status == model.StatusScheduled {
			out = append(out, p)
		}
	}
	return out
}

func (u *PostUsecase) CreatePost(ctx context.Context, data dto.PostPayload) dto.PostPayload {
	lg := logger.GetLogger()
	token, ok := u.writeToken(ctx)
	if !ok {
		return u.sim.CreateAck(ctx, data)
	}
	profile := u.fetchProfile(ctx, token)
	if profile == nil {
		return u.sim.CreateAck(ctx, data)
	}

	body, err := u.executor.Send(ctx, http.MethodPost, ugcPostsPath, token, buildShare(profile, data))
	if err != nil {
		lg.WithField("error", err).Warn("Error creating LinkedIn post, acknowledging locally")
		return u.sim.CreateAck(ctx, data)
	}

	ack := copyPayload(data)
	ack["id"] = upstreamID(body, fmt.Sprintf("%s%d", postIDPrefix, u.clock.Now().UnixMilli()))
	ack["createdAt"] = u.clock.Now().UTC().Format(time.RFC3339Nano)
	return ack
}

func (u *PostUsecase) UpdatePost(ctx context.Context, id string, data dto.PostPayload) dto.PostPayload {
	token, ok := u.writeToken(ctx)
	if !ok {
		return u.sim.UpdateAck(ctx, id, data)
	}
	profile := u.fetchProfile(ctx, token)
	if profile == nil {
		return u.sim.UpdateAck(ctx, id, data)
	}

	if _, err := u.executor.Send(ctx, http.MethodPut, ugcItemPath(id), token, buildShare(profile, data)); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"id":    id,
			"error": err,
		}).Warn("Error updating LinkedIn post, acknowledging locally")
		return u.sim.UpdateAck(ctx, id, data)
	}

	ack := copyPayload(data)
	ack["id"] = id
	ack["updatedAt"] = u.clock.Now().UTC().Format(time.RFC3339Nano)
	return ack
}

func (u *PostUsecase) DeletePost(ctx context.Context, id string) dto.DeleteAck {
	token, ok := u.writeToken(ctx)
	if !ok {
		return u.sim.DeleteAck(ctx, id)
	}
	if _, err := u.executor.Send(ctx, http.MethodDelete, ugcItemPath(id), token, nil); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"id":    id,
			"error": err,
		}).Warn("Error deleting LinkedIn post, acknowledging locally")
		return u.sim.DeleteAck(ctx, id)
	}
	return dto.DeleteAck{Success: true, ID: id}
}

func (u *PostUsecase) writeToken(ctx context.Context) (string, bool) {
	if !u.liveWrites {
		return "", false
	}
	return u.session.GetToken(ctx)
}

func buildShare(profile *model.Profile, data dto.PostPayload) dto.UGCShare {
	text := payloadString(data, "content")
	if text == "" {
		text = payloadString(data, "text")
	}
	if text == "" {
		text = payloadString(data, "title")
	}
	state := "PUBLISHED"
	if strings.EqualFold(payloadString(data, "status"), string(model.StatusDraft)) {
		state = "DRAFT"
	}
	return dto.UGCShare{
		Author:         profile.MemberURN(),
		LifecycleState: state,
		SpecificContent: map[string]dto.UGCSub{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    dto.UGCText{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}
}

func payloadString(data dto.PostPayload, key string) string {
	if s, ok := data[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// ugcItemPath maps a canonical post id back onto the upstream resource.
func ugcItemPath(id string) string {
	return ugcPostsPath + "/" + url.PathEscape(strings.TrimPrefix(id, postIDPrefix))
}

func upstreamID(body []byte, fallback string) string {
	if gjson.ValidBytes(body) {
		if id := gjson.GetBytes(body, "id").String(); id != "" {
			return postIDPrefix + id
		}
	}
	return fallback
}
