package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pachca/review-bot/internal/http/handler/webhook"
)

func WebhookRouter(router *gin.RouterGroup, handler *webhook.GitHubWebhookHandler) {
	router.POST("/github", handler.HandleEvent)
}
