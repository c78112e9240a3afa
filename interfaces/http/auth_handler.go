package http

import (
	"errors"
	"net/http"
	"time"

	"post-manager/domain/dto"
	"post-manager/domain/model"
	"post-manager/infrastructure/logger"
	"post-manager/infrastructure/utils"
	"post-manager/usecase"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const sessionSubject = "linkedin-session"

type IAuthHandler interface {
	Login(ctx *gin.Context)
	GetAuthURL(ctx *gin.Context)
	Callback(ctx *gin.Context)
	SetManualToken(ctx *gin.Context)
	Logout(ctx *gin.Context)
	Status(ctx *gin.Context)
	Stream(ctx *gin.Context)
}

// SessionStreamer pushes session events to a connected client.
type SessionStreamer interface {
	Serve(c *gin.Context, initial model.SessionEvent)
}

type AuthHandler struct {
	session   usecase.ISessionManager
	streamer  SessionStreamer
	secretKey string
}

func NewAuthHandler(session usecase.ISessionManager, streamer SessionStreamer, secretKey string) IAuthHandler {
	return &AuthHandler{session: session, streamer: streamer, secretKey: secretKey}
}

// Login handles GET /auth/linkedin
func (h *AuthHandler) Login(ctx *gin.Context) {
	authURL, err := h.session.BeginLogin(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to start LinkedIn login")
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to start login"})
		return
	}
	ctx.Redirect(http.StatusFound, authURL)
}

// GetAuthURL handles GET /auth/linkedin/url for clients that navigate themselves.
func (h *AuthHandler) GetAuthURL(ctx *gin.Context) {
	authURL, err := h.session.BeginLogin(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to start LinkedIn login")
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to start login"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"auth_url": authURL})
}

// Callback handles GET /auth/linkedin/callback
func (h *AuthHandler) Callback(ctx *gin.Context) {
	var query dto.CallbackQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Invalid callback query"})
		return
	}

	err := h.session.CompleteLoginFromCallback(ctx.Request.Context(), query)
	res := h.status(ctx)
	switch {
	case errors.Is(err, model.ErrAuthStateMismatch):
		res.Error = "state mismatch, start the login again"
		ctx.JSON(http.StatusForbidden, res)
		return
	case err != nil:
		var exErr *model.ExchangeError
		if errors.As(err, &exErr) {
			res.Error = "token exchange failed"
			ctx.JSON(http.StatusBadGateway, res)
			return
		}
		res.Error = err.Error()
		ctx.JSON(http.StatusInternalServerError, res)
		return
	}
	if query.Error != "" {
		res.Error = query.Error
	}
	ctx.JSON(http.StatusOK, res)
}

// SetManualToken handles POST /auth/token
func (h *AuthHandler) SetManualToken(ctx *gin.Context) {
	var req dto.ManualTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "token is required"})
		return
	}
	ttl := time.Duration(req.TTLHours * float64(time.Hour))
	if err := h.session.SetManualToken(ctx.Request.Context(), req.Token, ttl); err != nil {
		if errors.Is(err, model.ErrEmptyToken) {
			ctx.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
			return
		}
		logger.GetLogger().WithField("error", err).Error("Failed to store manual token")
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to store token"})
		return
	}
	ctx.JSON(http.StatusOK, h.status(ctx))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(ctx *gin.Context) {
	if err := h.session.Logout(ctx.Request.Context()); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to logout")
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to logout"})
		return
	}
	ctx.JSON(http.StatusOK, dto.AuthStatusResponse{Authenticated: false, State: string(model.SessionLoggedOut)})
}

// Status handles GET /auth/status
func (h *AuthHandler) Status(ctx *gin.Context) {
	h.session.Refresh(ctx.Request.Context())
	res := h.status(ctx)
	res.SessionToken = ""
	ctx.JSON(http.StatusOK, res)
}

// Stream handles GET /auth/stream
func (h *AuthHandler) Stream(ctx *gin.Context) {
	h.streamer.Serve(ctx, h.session.Snapshot(ctx.Request.Context()))
}

func (h *AuthHandler) status(ctx *gin.Context) dto.AuthStatusResponse {
	c := ctx.Request.Context()
	res := dto.AuthStatusResponse{State: string(h.session.State(c))}
	cred, ok := h.session.Current(c)
	if !ok {
		return res
	}
	exp := cred.ExpiresAt
	res.Authenticated = true
	res.State = string(model.SessionLoggedIn)
	res.Origin = string(cred.Origin)
	res.ExpiresAt = &exp
	res.SessionToken = h.issueSessionToken(cred)
	return res
}

// issueSessionToken signs a companion token for /api when a secret is configured.
func (h *AuthHandler) issueSessionToken(cred *model.Credential) string {
	if h.secretKey == "" {
		return ""
	}
	claims := model.SessionClaims{
		Origin: cred.Origin,
		StandardClaims: jwt.StandardClaims{
			Subject:   sessionSubject,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: cred.ExpiresAt.Unix(),
		},
	}
	token, err := utils.GenerateToken(claims, h.secretKey)
	if err != nil {
		return ""
	}
	return token
}
