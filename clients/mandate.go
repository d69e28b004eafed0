package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"post-approval-verification/shared"
)

// MandateService is the mandate/banking collaborator used by the EMI
// auto-pay flow.
type MandateService interface {
	// GetAccountInfo returns a previously saved bank account, if any. The flow
	// uses it only to pre-fill form fields, never to skip a screen.
	GetAccountInfo(ctx context.Context, userID string) (shared.AccountInfo, error)

	// AddAccountDetails persists the validated bank-details form.
	AddAccountDetails(ctx context.Context, userID string, details shared.BankDetailsSubmission) error

	// GetMandateBankDetail reports which mandate channels the bank supports.
	GetMandateBankDetail(ctx context.Context, userID string) (shared.MandateBankInfo, error)

	// CreateMandateRequest creates a mandate of the given type server-side.
	CreateMandateRequest(ctx context.Context, loanID, method string) (shared.MandateRequestInfo, error)
}

// HTTPMandateService implements MandateService against the platform API.
type HTTPMandateService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPMandateService creates a new instance of HTTPMandateService.
func NewHTTPMandateService(baseURL string) *HTTPMandateService {
	return &HTTPMandateService{baseURL: baseURL, httpClient: newHTTPClient()}
}

func (c *HTTPMandateService) GetAccountInfo(ctx context.Context, userID string) (shared.AccountInfo, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/account/info", c.baseURL), map[string]string{
		"userId": userID,
	})
	if err != nil {
		return shared.AccountInfo{}, err
	}

	var info shared.AccountInfo
	if err := decodeData(env, &info); err != nil {
		return shared.AccountInfo{}, err
	}
	return info, nil
}

func (c *HTTPMandateService) AddAccountDetails(ctx context.Context, userID string, details shared.BankDetailsSubmission) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/account/details", c.baseURL), map[string]string{
		"userId":        userID,
		"accountNumber": details.AccountNumber,
		"holderName":    details.HolderName,
		"ifsc":          details.IFSC,
	})
	return err
}

func (c *HTTPMandateService) GetMandateBankDetail(ctx context.Context, userID string) (shared.MandateBankInfo, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/mandate/bank-detail", c.baseURL), map[string]string{
		"userId": userID,
	})
	if err != nil {
		return shared.MandateBankInfo{}, err
	}

	var info shared.MandateBankInfo
	if err := decodeData(env, &info); err != nil {
		return shared.MandateBankInfo{}, err
	}
	return info, nil
}

func (c *HTTPMandateService) CreateMandateRequest(ctx context.Context, loanID, method string) (shared.MandateRequestInfo, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/mandate/request", c.baseURL), map[string]string{
		"loanId": loanID,
		"type":   method,
	})
	if err != nil {
		return shared.MandateRequestInfo{}, err
	}

	var info shared.MandateRequestInfo
	if err := decodeData(env, &info); err != nil {
		return shared.MandateRequestInfo{}, err
	}
	slog.Info("Mandate request created", "loanId", loanID, "type", method, "mandateId", info.MandateID)
	return info, nil
}
