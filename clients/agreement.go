package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"post-approval-verification/shared"
)

// AgreementService is the loan agreement collaborator.
type AgreementService interface {
	// InitiateAgreement starts agreement generation in the chosen language.
	InitiateAgreement(ctx context.Context, loanID, language string) error

	// GetAgreementURL returns the generated agreement and KFS document URLs.
	GetAgreementURL(ctx context.Context, loanID string) (shared.AgreementURLs, error)

	// RecordConsent records consent with the captured device coordinates.
	RecordConsent(ctx context.Context, loanID string, location shared.Coordinates) error

	// GetUserPhone resolves the phone number the signing OTP is sent to.
	GetUserPhone(ctx context.Context, userID string) (string, error)

	// SendAgreementOtp sends the signing OTP.
	SendAgreementOtp(ctx context.Context, loanID, phoneNumber string) error

	// VerifyAgreementOtp verifies the signing OTP together with the fixed
	// agreement title/version/text payload.
	VerifyAgreementOtp(ctx context.Context, loanID, code, title, version, text string) error
}

// HTTPAgreementService implements AgreementService against the platform API.
type HTTPAgreementService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPAgreementService creates a new instance of HTTPAgreementService.
func NewHTTPAgreementService(baseURL string) *HTTPAgreementService {
	return &HTTPAgreementService{baseURL: baseURL, httpClient: newHTTPClient()}
}

func (c *HTTPAgreementService) InitiateAgreement(ctx context.Context, loanID, language string) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/agreement/initiate", c.baseURL), map[string]string{
		"loanId":   loanID,
		"language": language,
	})
	return err
}

func (c *HTTPAgreementService) GetAgreementURL(ctx context.Context, loanID string) (shared.AgreementURLs, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/agreement/url", c.baseURL), map[string]string{
		"loanId": loanID,
	})
	if err != nil {
		return shared.AgreementURLs{}, err
	}

	var urls shared.AgreementURLs
	if err := decodeData(env, &urls); err != nil {
		return shared.AgreementURLs{}, err
	}
	return urls, nil
}

func (c *HTTPAgreementService) RecordConsent(ctx context.Context, loanID string, location shared.Coordinates) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/agreement/consent", c.baseURL), map[string]any{
		"loanId":    loanID,
		"latitude":  location.Latitude,
		"longitude": location.Longitude,
	})
	if err == nil {
		slog.Info("Agreement consent recorded", "loanId", loanID)
	}
	return err
}

func (c *HTTPAgreementService) GetUserPhone(ctx context.Context, userID string) (string, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/user/phone", c.baseURL), map[string]string{
		"userId": userID,
	})
	if err != nil {
		return "", err
	}

	var data struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := decodeData(env, &data); err != nil {
		return "", err
	}
	return data.PhoneNumber, nil
}

func (c *HTTPAgreementService) SendAgreementOtp(ctx context.Context, loanID, phoneNumber string) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/agreement/send-otp", c.baseURL), map[string]string{
		"loanId":      loanID,
		"phoneNumber": phoneNumber,
	})
	return err
}

func (c *HTTPAgreementService) VerifyAgreementOtp(ctx context.Context, loanID, code, title, version, text string) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/agreement/verify-otp", c.baseURL), map[string]string{
		"loanId":           loanID,
		"otp":              code,
		"agreementTitle":   title,
		"agreementVersion": version,
		"agreementText":    text,
	})
	return err
}
