package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DigioSigner implements Signer against the Digio document-signing API.
type DigioSigner struct {
	baseURL    string
	opts       Options
	httpClient *http.Client
}

// NewDigioSigner creates a new instance of DigioSigner. An empty baseURL
// yields a signer that reports ErrUnavailable, matching a page where the SDK
// script never loaded.
func NewDigioSigner(baseURL string, opts Options) *DigioSigner {
	return &DigioSigner{
		baseURL: baseURL,
		opts:    opts,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *DigioSigner) Init(ctx context.Context) error {
	if s.baseURL == "" {
		return ErrUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v2/client/health", s.baseURL), nil)
	if err != nil {
		return fmt.Errorf("failed to create init request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned status %d", ErrUnavailable, resp.StatusCode)
	}

	slog.Info("Digio signing session initialized", "environment", s.opts.Environment)
	return nil
}

func (s *DigioSigner) Submit(ctx context.Context, documentID, identifier, token string) error {
	if s.baseURL == "" {
		return ErrUnavailable
	}

	body := map[string]string{
		"identifier":   identifier,
		"environment":  s.opts.Environment,
		"logo":         s.opts.LogoURL,
		"theme":        s.opts.Theme,
		"redirect_url": s.opts.RedirectURL,
	}
	if token != "" {
		body["token_id"] = token
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal submit request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/client/document/%s/sign", s.baseURL, documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit document %s: %w", documentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("submit for document %s failed with status %d: %s", documentID, resp.StatusCode, string(respBody))
	}

	slog.Info("Mandate document submitted for signing", "documentId", documentID)
	return nil
}

func (s *DigioSigner) Cancel(ctx context.Context, documentID string) error {
	if s.baseURL == "" {
		return nil
	}

	url := fmt.Sprintf("%s/v2/client/document/%s/cancel", s.baseURL, documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create cancel request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to cancel document %s: %w", documentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cancel for document %s failed with status %d", documentID, resp.StatusCode)
	}
	return nil
}
