package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"post-manager/domain/dto"
	"post-manager/domain/model"
	"post-manager/infrastructure/persistence"
	"post-manager/usecase"
)

type stubCatalog struct{}

func (stubCatalog) ProfileEndpoint() string { return "/me" }

func (stubCatalog) PostEndpoints(*model.Profile) []model.EndpointSpec {
	return []model.EndpointSpec{
		{Path: "/shares", Kind: model.KindShares},
		{Path: "/ugcPosts", Kind: model.KindUGCPosts},
	}
}

func (stubCatalog) ScheduledEndpoints(*model.Profile) []model.EndpointSpec {
	return []model.EndpointSpec{{Path: "/ugcPosts?status=SCHEDULED", Kind: model.KindUGCPosts}}
}

type postFixture struct {
	uc       usecase.IPostUsecase
	session  *usecase.SessionManager
	executor *MockExecutor
	clock    *clockwork.FakeClock
}

func newPostFixture(t *testing.T, liveWrites bool) *postFixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := persistence.NewTokenStore(persistence.NewMemoryStore(), "")
	session := usecase.NewSessionManager(store, new(MockExchanger), &oauth2.Config{}, clock, usecase.SessionOptions{})
	ex := new(MockExecutor)
	uc := usecase.NewPostUsecase(
		session,
		ex,
		stubCatalog{},
		usecase.NewEndpointCascade(ex, time.Second),
		usecase.NewResponseNormalizer(clock, ""),
		usecase.NewSimulation(clock, 0),
		clock,
		liveWrites,
	)
	return &postFixture{uc: uc, session: session, executor: ex, clock: clock}
}

func (f *postFixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.SetManualToken(context.Background(), "tok", time.Hour))
}

const profileBody = `{"id":"abc","localizedFirstName":"Ada","localizedLastName":"Lovelace"}`

func TestGetPosts_NotAuthenticatedIsSimulated(t *testing.T) {
	f := newPostFixture(t, false)

	posts := f.uc.GetPosts(context.Background())
	assert.Len(t, posts, 5)
	f.executor.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPosts_CascadeThenNormalize(t *testing.T) {
	f := newPostFixture(t, false)
	f.login(t)

	f.executor.On("Get", mock.Anything, "/me", "tok").Return([]byte(profileBody), nil).Once()
	f.executor.On("Get", mock.Anything, "/shares", "tok").Return(nil, &model.UpstreamError{StatusCode: 403}).Once()
	f.executor.On("Get", mock.Anything, "/ugcPosts", "tok").Return([]byte(`{"elements":[
		{"id":"urn:li:ugcPost:1","lifecycleState":"PUBLISHED",
		 "specificContent":{"com.linkedin.ugc.ShareContent":{"shareCommentary":{"text":"Real post"}}}}]}`), nil).Once()

	posts := f.uc.GetPosts(context.Background())
	require.Len(t, posts, 1)
	assert.Equal(t, "linkedin_urn:li:ugcPost:1", posts[0].ID)
	assert.Equal(t, "Real post", posts[0].Content)
	f.executor.AssertExpectations(t)
}

func TestGetPosts_AllEndpointsFailStillResolves(t *testing.T) {
	f := newPostFixture(t, false)
	f.login(t)

	f.executor.On("Get", mock.Anything, "/me", "tok").Return(nil, errors.New("offline")).Once()
	f.executor.On("Get", mock.Anything, "/shares", "tok").Return(nil, errors.New("offline")).Once()
	f.executor.On("Get", mock.Anything, "/ugcPosts", "tok").Return(nil, errors.New("offline")).Once()

	posts := f.uc.GetPosts(context.Background())
	require.Len(t, posts, 5)
	assert.True(t, strings.HasPrefix(posts[0].Title, "LinkedIn API Post"))
}

func TestGetPosts_EmptyNormalizationIsSimulated(t *testing.T) {
	f := newPostFixture(t, false)
	f.login(t)

	f.executor.On("Get", mock.Anything, "/me", "tok").Return([]byte(profileBody), nil).Once()
	f.executor.On("Get", mock.Anything, "/shares", "tok").Return([]byte(`{"elements":[]}`), nil).Once()

	posts := f.uc.GetPosts(context.Background())
	assert.Len(t, posts, 5)
	f.executor.AssertNotCalled(t, "Get", mock.Anything, "/ugcPosts", mock.Anything)
}

func TestGetScheduledPosts_FiltersScheduled(t *testing.T) {
	f := newPostFixture(t, false)
	f.login(t)

	f.executor.On("Get", mock.Anything, "/me", "tok").Return([]byte(profileBody), nil).Once()
	f.executor.On("Get", mock.Anything, "/ugcPosts?status=SCHEDULED", "tok").Return([]byte(`{"elements":[
		{"id":"1","lifecycleState":"SCHEDULED","scheduledPublishTime":1712000000000},
		{"id":"2","lifecycleState":"PUBLISHED"}]}`), nil).Once()

	posts := f.uc.GetScheduledPosts(context.Background())
	require.Len(t, posts, 1)
	assert.Equal(t, "linkedin_1", posts[0].ID)
	require.NotNil(t, posts[0].ScheduledDate)
}

func TestGetScheduledPosts_NoneScheduledIsSimulated(t *testing.T) {
	f := newPostFixture(t, false)
	f.login(t)

	f.executor.On("Get", mock.Anything, "/me", "tok").Return([]byte(profileBody), nil).Once()
	f.executor.On("Get", mock.Anything, "/ugcPosts?status=SCHEDULED", "tok").
		Return([]byte(`{"elements":[{"id":"2","lifecycleState":"PUBLISHED"}]}`), nil).Once()

	posts := f.uc.GetScheduledPosts(context.Background())
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.Equal(t, model.StatusScheduled, p.Status)
		assert.True(t, p.ScheduledDate.After(f.clock.Now()))
	}
}

func TestGetProfile(t *testing.T) {
	f := newPostFixture(t, false)
	assert.True(t, f.uc.GetProfile(context.Background()).Simulated)

	f.login(t)
	f.executor.On("Get", mock.Anything, "/me", "tok").Return([]byte(profileBody), nil).Once()
	p := f.uc.GetProfile(context.Background())
	assert.False(t, p.Simulated)
	assert.Equal(t, "Ada", p.FirstName)

	f.executor.On("Get", mock.Anything, "/me", "tok").Return(nil, errors.New("down")).Once()
	assert.True(t, f.uc.GetProfile(context.Background()).Simulated)
}

func TestCreatePost_SimulatedEchoesInput(t *testing.T) {
	f := newPostFixture(t, false)
	f.login(t)
	in := dto.PostPayload{"title": "T", "content": "C", "tags": []interface{}{"go"}}

	ack := f.uc.CreatePost(context.Background(), in)
	for k, v := range in {
		assert.Equal(t, v, ack[k])
	}
	assert.NotEmpty(t, ack["id"])
	assert.NotEmpty(t, ack["createdAt"])
	f.executor.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_LiveWrite(t *testing.T) {
	f := newPostFixture(t, true)
	f.login(t)

	f.executor.On("Get", mock.Anything, "/me", "tok").Return([]byte(profileBody), nil).Once()
	f.executor.On("Send", mock.Anything, http.MethodPost, "/ugcPosts", "tok", mock.MatchedBy(func(s dto.UGCShare) bool {
		return s.Author == "urn:li:person:abc" &&
			s.SpecificContent["com.linkedin.ugc.ShareContent"].ShareCommentary.Text == "Hello"
	})).Return([]byte(`{"id":"urn:li:share:77"}`), nil).Once()

	ack := f.uc.CreatePost(context.Background(), dto.PostPayload{"content": "Hello"})
	assert.Equal(t, "linkedin_urn:li:share:77", ack["id"])
	assert.Equal(t, "Hello", ack["content"])
	f.executor.AssertExpectations(t)
}

func TestUpdatePost_LiveFailureFallsBack(t *testing.T) {
	f := newPostFixture(t, true)
	f.login(t)

	f.executor.On("Get", mock.Anything, "/me", "tok").Return([]byte(profileBody), nil).Once()
	f.executor.On("Send", mock.Anything, http.MethodPut, "/ugcPosts/urn:li:share:77", "tok", mock.Anything).
		Return(nil, &model.UpstreamError{StatusCode: 405}).Once()

	ack := f.uc.UpdatePost(context.Background(), "linkedin_urn:li:share:77", dto.PostPayload{"title": "New"})
	assert.Equal(t, "linkedin_urn:li:share:77", ack["id"])
	assert.Equal(t, "New", ack["title"])
	assert.Contains(t, ack, "updatedAt")
}

func TestDeletePost(t *testing.T) {
	f := newPostFixture(t, true)
	f.login(t)

	f.executor.On("Send", mock.Anything, http.MethodDelete, "/ugcPosts/urn:li:share:5", "tok", nil).
		Return([]byte{}, nil).Once()
	assert.Equal(t, dto.DeleteAck{Success: true, ID: "linkedin_urn:li:share:5"},
		f.uc.DeletePost(context.Background(), "linkedin_urn:li:share:5"))

	f.executor.On("Send", mock.Anything, http.MethodDelete, "/ugcPosts/9", "tok", nil).
		Return(nil, errors.New("gone")).Once()
	assert.Equal(t, dto.DeleteAck{Success: true, ID: "linkedin_9"}, f.uc.DeletePost(context.Background(), "linkedin_9"))
}
