package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"post-approval-verification/shared"
)

// IdentityService is the identity/OTP collaborator: Aadhaar detail save,
// OTP delivery and verification, and the DigiLocker fallback channel.
type IdentityService interface {
	// GetUserBasicDetail resolves the user's registered mobile number and name.
	GetUserBasicDetail(ctx context.Context, userID string) (shared.UserBasicDetail, error)

	// SaveAadhaarDetail persists the entered Aadhaar number for the user.
	SaveAadhaarDetail(ctx context.Context, userID, aadhaarNumber string) error

	// SendOtp delivers a verification OTP to the user's registered mobile.
	SendOtp(ctx context.Context, userID string) error

	// VerifyOtp checks the entered OTP code.
	VerifyOtp(ctx context.Context, userID, code string) error

	// CreateFallbackURL creates a DigiLocker verification URL for the loan.
	CreateFallbackURL(ctx context.Context, loanID string) (string, error)
}

// HTTPIdentityService implements IdentityService against the platform API.
type HTTPIdentityService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPIdentityService creates a new instance of HTTPIdentityService.
func NewHTTPIdentityService(baseURL string) *HTTPIdentityService {
	return &HTTPIdentityService{baseURL: baseURL, httpClient: newHTTPClient()}
}

func (c *HTTPIdentityService) GetUserBasicDetail(ctx context.Context, userID string) (shared.UserBasicDetail, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/user/basic-detail", c.baseURL), map[string]string{
		"userId": userID,
	})
	if err != nil {
		return shared.UserBasicDetail{}, err
	}

	var detail shared.UserBasicDetail
	if err := decodeData(env, &detail); err != nil {
		return shared.UserBasicDetail{}, err
	}
	return detail, nil
}

func (c *HTTPIdentityService) SaveAadhaarDetail(ctx context.Context, userID, aadhaarNumber string) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/aadhaar/save-detail", c.baseURL), map[string]string{
		"userId":        userID,
		"aadhaarNumber": aadhaarNumber,
	})
	return err
}

func (c *HTTPIdentityService) SendOtp(ctx context.Context, userID string) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/aadhaar/send-otp", c.baseURL), map[string]string{
		"userId": userID,
	})
	if err == nil {
		slog.Info("Aadhaar OTP sent", "userId", userID)
	}
	return err
}

func (c *HTTPIdentityService) VerifyOtp(ctx context.Context, userID, code string) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/aadhaar/verify-otp", c.baseURL), map[string]string{
		"userId": userID,
		"otp":    code,
	})
	return err
}

func (c *HTTPIdentityService) CreateFallbackURL(ctx context.Context, loanID string) (string, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/aadhaar/digilocker-url", c.baseURL), map[string]string{
		"loanId": loanID,
	})
	if err != nil {
		return "", err
	}

	var data struct {
		URL string `json:"url"`
	}
	if err := decodeData(env, &data); err != nil {
		return "", err
	}
	slog.Info("DigiLocker fallback URL created", "loanId", loanID)
	return data.URL, nil
}
