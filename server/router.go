package server

import (
	"time"

	httpHandler "post-manager/interfaces/http"
	"post-manager/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	authHandler httpHandler.IAuthHandler,
	postHandler httpHandler.IPostHandler,
	healthHandler httpHandler.IHealthHandler,
	secretKey string,
	allowOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	corsConfig := cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", healthHandler.Healthz)

	auth := router.Group("/auth")
	{
		auth.GET("/linkedin", authHandler.Login)
		auth.GET("/linkedin/url", authHandler.GetAuthURL)
		auth.GET("/linkedin/callback", authHandler.Callback)
		auth.POST("/token", authHandler.SetManualToken)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/status", authHandler.Status)
		auth.GET("/stream", authHandler.Stream)
	}

	api := router.Group("api")
	api.Use(middleware.Auth(secretKey))
	{
		api.GET("/profile", postHandler.GetProfile)
		api.GET("/posts", postHandler.GetPosts)
		api.GET("/posts/scheduled", postHandler.GetScheduledPosts)
		api.POST("/posts", postHandler.CreatePost)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
	}

	return router
}
