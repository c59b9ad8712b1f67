package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingValue is returned by Load when a required variable is unset.
var ErrMissingValue = errors.New("required configuration value is missing")

type Config struct {
	OTel           OTelConfig
	GitHub         GitHubConfig
	Chat           ChatConfig
	Env            string
	Port           string
	PullRequestURL string // base link for "#123" in chat messages, number is appended
	NodeID         int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type GitHubConfig struct {
	AccessToken string
	Owner       string
	Repo        string
	BotLogin    string // author of the sentinel comments
	APIURL      string // Optional: GitHub Enterprise
}

type ChatProvider string

const (
	ChatProviderPachca ChatProvider = "pachca"
	ChatProviderSlack  ChatProvider = "slack"
)

type ChatConfig struct {
	Provider ChatProvider
	Pachca   PachcaConfig
	Slack    SlackConfig
}

type PachcaConfig struct {
	AccessToken string
	ChatID      string
	APIURL      string
	AppURL      string
}

type SlackConfig struct {
	BotToken     string
	ChannelID    string
	WorkspaceURL string
}

// Load reads configuration from environment variables once at start-up.
// In development a local .env file is loaded first when present.
func Load() (Config, error) {
	if getEnv("RELAY_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:    getEnv("RELAY_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		NodeID: getEnvInt64("SNOWFLAKE_NODE_ID", 1),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "relay"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		GitHub: GitHubConfig{
			AccessToken: getEnv("GITHUB_ACCESS_TOKEN", ""),
			Owner:       getEnv("GITHUB_OWNER", ""),
			Repo:        getEnv("GITHUB_REPO", ""),
			BotLogin:    getEnv("GITHUB_USER_LOGIN", ""),
			APIURL:      getEnv("GITHUB_API_URL", ""),
		},
		Chat: ChatConfig{
			Provider: ChatProvider(getEnv("CHAT_PROVIDER", string(ChatProviderPachca))),
			Pachca: PachcaConfig{
				AccessToken: getEnv("PACHCA_API_ACCESS_TOKEN", ""),
				ChatID:      getEnv("PACHCA_CHAT_ID", ""),
				APIURL:      getEnv("PACHCA_API_URL", "https://api.pachca.com/api/shared/v1"),
				AppURL:      getEnv("PACHCA_APP_URL", "https://app.pachca.com"),
			},
			Slack: SlackConfig{
				BotToken:     getEnv("SLACK_BOT_TOKEN", ""),
				ChannelID:    getEnv("SLACK_CHANNEL_ID", ""),
				WorkspaceURL: getEnv("SLACK_WORKSPACE_URL", "https://slack.com"),
			},
		},
	}
	cfg.PullRequestURL = getEnv("PULL_REQUEST_URL",
		fmt.Sprintf("https://app.graphite.dev/github/pr/%s/%s", cfg.GitHub.Owner, cfg.GitHub.Repo))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

type requiredVar struct {
	name  string
	value string
}

func (c Config) validate() error {
	required := []requiredVar{
		{"GITHUB_ACCESS_TOKEN", c.GitHub.AccessToken},
		{"GITHUB_OWNER", c.GitHub.Owner},
		{"GITHUB_REPO", c.GitHub.Repo},
		{"GITHUB_USER_LOGIN", c.GitHub.BotLogin},
	}

	switch c.Chat.Provider {
	case ChatProviderPachca:
		required = append(required,
			requiredVar{"PACHCA_API_ACCESS_TOKEN", c.Chat.Pachca.AccessToken},
			requiredVar{"PACHCA_CHAT_ID", c.Chat.Pachca.ChatID},
		)
	case ChatProviderSlack:
		required = append(required,
			requiredVar{"SLACK_BOT_TOKEN", c.Chat.Slack.BotToken},
			requiredVar{"SLACK_CHANNEL_ID", c.Chat.Slack.ChannelID},
		)
	default:
		return fmt.Errorf("unsupported CHAT_PROVIDER %q", c.Chat.Provider)
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingValue, r.name)
		}
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}
