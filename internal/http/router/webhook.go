package router

import (
	"github.com/gin-gonic/gin"

	"phl311.app/bot/internal/http/handler/webhook"
)

func WebhookRouter(router *gin.RouterGroup, handler *webhook.GitLabWebhookHandler) {
	router.POST("/gitlab", handler.HandleEvent)
}
