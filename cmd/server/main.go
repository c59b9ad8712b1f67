package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pachca/review-bot/common/id"
	"github.com/pachca/review-bot/common/logger"
	"github.com/pachca/review-bot/common/otel"
	"github.com/pachca/review-bot/core/config"
	"github.com/pachca/review-bot/internal/http/middleware"
	httprouter "github.com/pachca/review-bot/internal/http/router"
	"github.com/pachca/review-bot/internal/service"
	"github.com/pachca/review-bot/internal/service/chat"
	"github.com/pachca/review-bot/internal/service/issue_tracker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	tracker, err := issue_tracker.NewGitHubIssueTrackerService(issue_tracker.GitHubConfig{
		AccessToken: cfg.GitHub.AccessToken,
		Owner:       cfg.GitHub.Owner,
		Repo:        cfg.GitHub.Repo,
		BaseURL:     cfg.GitHub.APIURL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create github client", "error", err)
		os.Exit(1)
	}

	chatService, err := newChatService(cfg.Chat)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create chat client", "error", err, "provider", cfg.Chat.Provider)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "relay starting",
		"env", cfg.Env,
		"repository", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo,
		"chat_provider", cfg.Chat.Provider,
	)

	services := service.NewServices(service.ServicesConfig{
		Tracker:        tracker,
		Chat:           chatService,
		BotLogin:       cfg.GitHub.BotLogin,
		PullRequestURL: cfg.PullRequestURL,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func newChatService(cfg config.ChatConfig) (chat.ChatService, error) {
	switch cfg.Provider {
	case config.ChatProviderSlack:
		return chat.NewSlackService(chat.SlackConfig{
			BotToken:     cfg.Slack.BotToken,
			ChannelID:    cfg.Slack.ChannelID,
			WorkspaceURL: cfg.Slack.WorkspaceURL,
		})
	default:
		return chat.NewPachcaService(chat.PachcaConfig{
			AccessToken: cfg.Pachca.AccessToken,
			ChatID:      cfg.Pachca.ChatID,
			APIURL:      cfg.Pachca.APIURL,
			AppURL:      cfg.Pachca.AppURL,
		})
	}
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
 ____  ____    ____  _____ _        _ __   __
|  _ \|  _ \  |  _ \| ____| |      / \\ \ / /
| |_) | |_) | | |_) |  _| | |     / _ \\ V /
|  __/|  _ <  |  _ <| |___| |___ / ___ \| |
|_|   |_| \_\ |_| \_\_____|_____/_/   \_\_|
`
