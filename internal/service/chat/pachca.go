package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pachca/review-bot/internal/model"
)

const (
	entityTypeDiscussion = "discussion"
	entityTypeThread     = "thread"
)

type PachcaConfig struct {
	AccessToken string
	ChatID      string
	APIURL      string
	AppURL      string
	HTTPClient  *http.Client
}

type pachcaService struct {
	httpClient *http.Client
	apiURL     string
	appURL     string
	token      string
	chatID     string
}

func NewPachcaService(cfg PachcaConfig) (ChatService, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("pachca access token is required")
	}
	if cfg.ChatID == "" {
		return nil, fmt.Errorf("pachca chat id is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &pachcaService{
		httpClient: httpClient,
		apiURL:     strings.TrimSuffix(cfg.APIURL, "/"),
		appURL:     strings.TrimSuffix(cfg.AppURL, "/"),
		token:      cfg.AccessToken,
		chatID:     cfg.ChatID,
	}, nil
}

type pachcaCreateRequest struct {
	Message struct {
		EntityType string `json:"entity_type"`
		EntityID   int64  `json:"entity_id"`
		Content    string `json:"content"`
	} `json:"message"`
}

type pachcaUpdateRequest struct {
	Message struct {
		Content string   `json:"content"`
		Files   []string `json:"files"`
	} `json:"message"`
}

type pachcaThread struct {
	ID     int64 `json:"id"`
	ChatID int64 `json:"chat_id"`
}

type pachcaMessageResponse struct {
	Data struct {
		ID     int64         `json:"id"`
		Thread *pachcaThread `json:"thread"`
	} `json:"data"`
}

type pachcaThreadResponse struct {
	Data pachcaThread `json:"data"`
}

type pachcaErrorResponse struct {
	Errors []struct {
		Key     string `json:"key"`
		Value   string `json:"value"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *pachcaService) CreateMessage(ctx context.Context, content string) (*model.ChatMessage, error) {
	return s.createMessage(ctx, "create message", entityTypeDiscussion, s.chatID, content)
}

func (s *pachcaService) SendThreadMessage(ctx context.Context, threadID string, content string) (*model.ChatMessage, error) {
	return s.createMessage(ctx, "send thread message", entityTypeThread, threadID, content)
}

func (s *pachcaService) createMessage(ctx context.Context, op, entityType, entityID, content string) (*model.ChatMessage, error) {
	id, err := strconv.ParseInt(entityID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("pachca: %s: invalid %s id %q: %w", op, entityType, entityID, err)
	}

	var req pachcaCreateRequest
	req.Message.EntityType = entityType
	req.Message.EntityID = id
	req.Message.Content = content

	var resp pachcaMessageResponse
	if err := s.do(ctx, op, http.MethodPost, "/messages", req, &resp); err != nil {
		return nil, err
	}
	return resp.toMessage(), nil
}

func (s *pachcaService) UpdateMessage(ctx context.Context, messageID string, content string) (*model.ChatMessage, error) {
	var req pachcaUpdateRequest
	req.Message.Content = content
	req.Message.Files = []string{}

	var resp pachcaMessageResponse
	if err := s.do(ctx, "update message", http.MethodPut, "/messages/"+url.PathEscape(messageID), req, &resp); err != nil {
		return nil, err
	}
	return resp.toMessage(), nil
}

func (s *pachcaService) CreateThread(ctx context.Context, messageID string) (*model.Thread, error) {
	var resp pachcaThreadResponse
	if err := s.do(ctx, "create thread", http.MethodPost, "/messages/"+url.PathEscape(messageID)+"/thread", nil, &resp); err != nil {
		return nil, err
	}
	return &model.Thread{
		ID:     strconv.FormatInt(resp.Data.ID, 10),
		ChatID: strconv.FormatInt(resp.Data.ChatID, 10),
	}, nil
}

func (s *pachcaService) MessageLink() string {
	return s.appURL + "/chats/" + s.chatID
}

func (r pachcaMessageResponse) toMessage() *model.ChatMessage {
	msg := &model.ChatMessage{ID: strconv.FormatInt(r.Data.ID, 10)}
	if r.Data.Thread != nil && r.Data.Thread.ID != 0 {
		msg.ThreadID = strconv.FormatInt(r.Data.Thread.ID, 10)
	}
	return msg
}

func (s *pachcaService) do(ctx context.Context, op, method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("pachca: %s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("pachca: %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pachca: %s: %w", op, err)
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "pachca request completed",
		"op", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pachca: %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.HTTPError{
			Op:         "pachca: " + op,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Message:    errorMessage(data),
		}
	}

	if result == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("pachca: %s: unmarshal response: %w", op, err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var errResp pachcaErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil || len(errResp.Errors) == 0 {
		return ""
	}

	parts := make([]string, 0, len(errResp.Errors))
	for _, e := range errResp.Errors {
		if e.Key != "" {
			parts = append(parts, e.Key+": "+e.Message)
			continue
		}
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, "; ")
}
