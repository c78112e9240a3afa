package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"post-manager/domain/dto"
	"post-manager/infrastructure/logger"
	"post-manager/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const SessionOriginKey = "session_origin"

// Auth verifies the companion session token issued at login.
// With an empty secret the check is disabled.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if secretKey == "" {
			ctx.Next()
			return
		}
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		authorization := ctx.Request.Header.Get("Authorization")
		token, found := strings.CutPrefix(authorization, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, err := utils.ParseToken(strings.TrimSpace(token), secretKey)
		if err != nil {
			res.ResponseMessage = abortMessage(err)
			logger.GetLogger().WithField("error", err).Warn("Rejected session token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		ctx.Set(SessionOriginKey, string(claims.Origin))
		ctx.Next()
	}
}

func abortMessage(err error) string {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return "Unauthorized"
	}
	switch {
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return "That's not even a token"
	case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
		// Token is either expired or not active yet
		return "Timing is everything"
	default:
		return fmt.Sprintf("Couldn't handle this token:%v", err)
	}
}
