package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/umlchat/umlchat-backend/internal/http/handlers"
	httpMW "github.com/umlchat/umlchat-backend/internal/http/middleware"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	AssistHandler       *httpH.AssistHandler
	ConversationHandler *httpH.ConversationHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AssistHandler != nil {
			protected.POST("/assist/turns", cfg.AssistHandler.CreateTurn)
		}

		if cfg.ConversationHandler != nil {
			protected.GET("/conversations", cfg.ConversationHandler.ListConversations)
			protected.GET("/conversations/:id", cfg.ConversationHandler.GetConversation)
			protected.DELETE("/conversations/:id", cfg.ConversationHandler.DeleteConversation)
		}
	}

	return r
}
