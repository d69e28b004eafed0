package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"post-approval-verification/shared"
)

// ErrInvalidIFSC is returned when the lookup provider does not recognize the
// code (any non-200 response).
var ErrInvalidIFSC = errors.New("invalid IFSC code")

// IFSCService resolves an Indian bank branch routing code into bank details.
type IFSCService interface {
	Lookup(ctx context.Context, code string) (shared.IFSCDetails, error)
}

// HTTPIFSCService implements IFSCService against a public lookup provider
// (GET {base}/{code} returning the bank record as a flat JSON object).
type HTTPIFSCService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPIFSCService creates a new instance of HTTPIFSCService.
func NewHTTPIFSCService(baseURL string) *HTTPIFSCService {
	return &HTTPIFSCService{baseURL: baseURL, httpClient: newHTTPClient()}
}

func (c *HTTPIFSCService) Lookup(ctx context.Context, code string) (shared.IFSCDetails, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return shared.IFSCDetails{}, fmt.Errorf("failed to create IFSC lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shared.IFSCDetails{}, fmt.Errorf("failed to execute IFSC lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return shared.IFSCDetails{}, fmt.Errorf("IFSC lookup for %s returned status %d: %w", code, resp.StatusCode, ErrInvalidIFSC)
	}

	var record struct {
		Bank    string `json:"BANK"`
		Branch  string `json:"BRANCH"`
		Address string `json:"ADDRESS"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return shared.IFSCDetails{}, fmt.Errorf("failed to decode IFSC lookup response: %w", err)
	}

	return shared.IFSCDetails{Bank: record.Bank, Branch: record.Branch, Address: record.Address}, nil
}
