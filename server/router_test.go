package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"post-manager/domain/dto"
	"post-manager/infrastructure/clients/linkedin"
	"post-manager/infrastructure/persistence"
	"post-manager/infrastructure/realtime"
	httpHandler "post-manager/interfaces/http"
	"post-manager/usecase"
)

const upstreamShares = `{"elements":[{"id":"urn:li:share:1","text":{"text":"Posted for real"},
	"totalSocialActivityCounts":{"numLikes":4}}]}`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/me":
			_, _ = w.Write([]byte(`{"id":"abc","localizedFirstName":"Ada","localizedLastName":"Lovelace"}`))
		case "/shares":
			_, _ = w.Write([]byte(upstreamShares))
		default:
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"not enough permissions"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, secretKey, upstreamURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := clockwork.NewRealClock()
	store := persistence.NewTokenStore(persistence.NewMemoryStore(), "")
	oauthCfg := linkedin.NewOAuth2Config(
		"client-123", "", "http://localhost:10001/auth/linkedin/callback",
		"https://www.linkedin.com/oauth/v2/authorization", "https://www.linkedin.com/oauth/v2/accessToken",
		[]string{"r_liteprofile"},
	)
	session := usecase.NewSessionManager(store, linkedin.NewSimulatedExchanger(clock), oauthCfg, clock, usecase.SessionOptions{})
	hub := realtime.NewSessionHub()
	session.Subscribe(hub.Broadcast)

	client := linkedin.NewClient(linkedin.Options{BaseURL: upstreamURL, Timeout: 2 * time.Second})
	postUsecase := usecase.NewPostUsecase(
		session,
		client,
		linkedin.NewCatalog([]string{"shares", "ugc-posts"}, nil),
		usecase.NewEndpointCascade(client, time.Second),
		usecase.NewResponseNormalizer(clock, ""),
		usecase.NewSimulation(clock, 0),
		clock,
		false,
	)

	return InitiateRouter(
		httpHandler.NewAuthHandler(session, hub, secretKey),
		httpHandler.NewPostHandler(postUsecase),
		httpHandler.NewHealthHandler(session),
		secretKey,
		[]string{"http://localhost:4200"},
	)
}

func do(router *gin.Engine, method, target, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type postsBody struct {
	Data []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"data"`
	Count int `json:"count"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, "", newUpstream(t).URL)

	rec := do(router, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","session":"logged-out"}`, rec.Body.String())
}

func TestRouter_PostsWhileLoggedOutAreSimulated(t *testing.T) {
	router := newTestRouter(t, "", newUpstream(t).URL)

	rec := do(router, http.MethodGet, "/api/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body postsBody
	decode(t, rec, &body)
	assert.Equal(t, 5, body.Count)

	rec = do(router, http.MethodGet, "/api/posts/scheduled", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, 3, body.Count)
}

func TestRouter_LoginCallbackThenLivePosts(t *testing.T) {
	router := newTestRouter(t, "", newUpstream(t).URL)

	rec := do(router, http.MethodGet, "/auth/linkedin", "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	rec = do(router, http.MethodGet, "/auth/status", "", "")
	var status dto.AuthStatusResponse
	decode(t, rec, &status)
	assert.Equal(t, "pending-callback", status.State)

	rec = do(router, http.MethodGet, "/auth/linkedin/callback?code=abc&state="+url.QueryEscape(state), "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &status)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "oauth", status.Origin)
	assert.Empty(t, status.SessionToken)

	rec = do(router, http.MethodGet, "/api/posts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body postsBody
	decode(t, rec, &body)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "linkedin_urn:li:share:1", body.Data[0].ID)
	assert.Equal(t, "Posted for real", body.Data[0].Title)

	rec = do(router, http.MethodGet, "/api/profile", "", "")
	assert.Contains(t, rec.Body.String(), `"firstName":"Ada"`)
}

func TestRouter_CallbackStateMismatch(t *testing.T) {
	router := newTestRouter(t, "", newUpstream(t).URL)
	do(router, http.MethodGet, "/auth/linkedin", "", "")

	rec := do(router, http.MethodGet, "/auth/linkedin/callback?code=abc&state=forged", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var status dto.AuthStatusResponse
	decode(t, rec, &status)
	assert.False(t, status.Authenticated)
	assert.NotEmpty(t, status.Error)
}

func TestRouter_CallbackProviderError(t *testing.T) {
	router := newTestRouter(t, "", newUpstream(t).URL)

	rec := do(router, http.MethodGet, "/auth/linkedin/callback?error=user_cancelled_login&error_description=cancelled", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var status dto.AuthStatusResponse
	decode(t, rec, &status)
	assert.False(t, status.Authenticated)
	assert.Equal(t, "user_cancelled_login", status.Error)
}

func TestRouter_ManualTokenAndSessionGuard(t *testing.T) {
	router := newTestRouter(t, "s3cret", newUpstream(t).URL)

	rec := do(router, http.MethodPost, "/auth/token", `{"token":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/auth/token", `{"token":"manual-token","ttlHours":2}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status dto.AuthStatusResponse
	decode(t, rec, &status)
	assert.Equal(t, "manual", status.Origin)
	require.NotEmpty(t, status.SessionToken)

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/api/posts", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/api/posts", "", "garbage").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/posts", "", status.SessionToken).Code)
}

func TestRouter_WritesEchoInput(t *testing.T) {
	router := newTestRouter(t, "", newUpstream(t).URL)

	rec := do(router, http.MethodPost, "/api/posts", `{"title":"T","content":"C"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ack map[string]interface{}
	decode(t, rec, &ack)
	assert.Equal(t, "T", ack["title"])
	assert.Equal(t, "C", ack["content"])
	assert.NotEmpty(t, ack["id"])
	assert.NotEmpty(t, ack["createdAt"])

	rec = do(router, http.MethodPut, "/api/posts/linkedin_1", `{"title":"U"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &ack)
	assert.Equal(t, "linkedin_1", ack["id"])
	assert.NotEmpty(t, ack["updatedAt"])

	rec = do(router, http.MethodDelete, "/api/posts/linkedin_1", "", "")
	assert.JSONEq(t, `{"success":true,"id":"linkedin_1"}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/api/posts", `{broken`, "").Code)
}

func TestRouter_Logout(t *testing.T) {
	router := newTestRouter(t, "", newUpstream(t).URL)
	do(router, http.MethodPost, "/auth/token", `{"token":"manual-token"}`, "")

	rec := do(router, http.MethodPost, "/auth/logout", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/auth/status", "", "")
	var status dto.AuthStatusResponse
	decode(t, rec, &status)
	assert.False(t, status.Authenticated)
	assert.Equal(t, "logged-out", status.State)
}
