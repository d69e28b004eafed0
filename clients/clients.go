// Package clients holds thin HTTP clients for the remote collaborator
// services the verification flows depend on. Each client is an interface with
// one HTTP implementation; flows never branch on anything beyond the response
// shapes defined here.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// envelope is the common response wrapper used by the platform services.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// postJSON sends a JSON body and decodes the envelope. A non-2xx status or a
// success=false envelope is returned as an error so callers have a single
// failure path.
func postJSON(ctx context.Context, hc *http.Client, url string, body any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request for %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doEnvelope(hc, req)
}

// getJSON fetches a URL and decodes the envelope.
func getJSON(ctx context.Context, hc *http.Client, url string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	return doEnvelope(hc, req)
}

func doEnvelope(hc *http.Client, req *http.Request) (*envelope, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request for %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("request to %s failed with status %d: %s", req.URL, resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", req.URL, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("request to %s rejected: %s", req.URL, env.Message)
	}
	return &env, nil
}

func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("response carried no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
