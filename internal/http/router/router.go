package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pachca/review-bot/internal/http/handler/webhook"
	"github.com/pachca/review-bot/internal/mapper"
	"github.com/pachca/review-bot/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	githubHandler := webhook.NewGitHubWebhookHandler(mapper.NewGitHubEventMapper(), services.Dispatcher())
	WebhookRouter(router.Group("/webhooks"), githubHandler)
}
