package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// ChatService posts synthesized human-readable messages back into the
// conversational thread the patient started from.
type ChatService interface {
	CreateSession(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, sessionID, text string) error
}

// HTTPChatService implements ChatService against the chat channel API.
type HTTPChatService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPChatService creates a new instance of HTTPChatService.
func NewHTTPChatService(baseURL string) *HTTPChatService {
	return &HTTPChatService{baseURL: baseURL, httpClient: newHTTPClient()}
}

func (c *HTTPChatService) CreateSession(ctx context.Context) (string, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/chat/session", c.baseURL), map[string]string{
		"clientRef": uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	var data struct {
		SessionID string `json:"sessionId"`
	}
	if err := decodeData(env, &data); err != nil {
		return "", err
	}
	slog.Info("Chat session created", "sessionId", data.SessionID)
	return data.SessionID, nil
}

func (c *HTTPChatService) SendMessage(ctx context.Context, sessionID, text string) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/chat/session/%s/message", c.baseURL, sessionID), map[string]string{
		"text": text,
	})
	return err
}
