package router

import (
	"github.com/gin-gonic/gin"

	"phl311.app/bot/internal/http/handler"
	"phl311.app/bot/internal/http/handler/webhook"
	"phl311.app/bot/internal/service"
)

type RouterConfig struct {
	WebhookSecret   string
	TraceHeaderName string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	webhookHandler := webhook.NewGitLabWebhookHandler(services.Mentions(), cfg.WebhookSecret, cfg.TraceHeaderName)
	WebhookRouter(router.Group("/webhooks"), webhookHandler)

	v1 := router.Group("/api/v1")
	{
		lookupHandler := handler.NewLookupHandler(services.Lookup())
		LookupRouter(v1.Group("/requests"), lookupHandler)
	}
}
