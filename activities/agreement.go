package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"post-approval-verification/device"
	"post-approval-verification/shared"
)

// InitiateAgreement starts agreement generation in the selected language.
func (a *Activities) InitiateAgreement(ctx context.Context, loanID, language string) error {
	return a.Agreement.InitiateAgreement(ctx, loanID, language)
}

// GetAgreementURL fetches the generated agreement and KFS document URLs.
func (a *Activities) GetAgreementURL(ctx context.Context, loanID string) (shared.AgreementURLs, error) {
	return a.Agreement.GetAgreementURL(ctx, loanID)
}

// CaptureLocation fetches the device geolocation through the capture bridge.
// Failures are non-retryable here; the flow offers an explicit retry action
// instead.
func (a *Activities) CaptureLocation(ctx context.Context, userID string) (shared.Coordinates, error) {
	logger := activity.GetLogger(ctx)

	coords, err := a.Locator.CurrentPosition(ctx)
	if err != nil {
		logger.Error("Geolocation capture failed", "userId", userID, "error", err)
		return shared.Coordinates{}, temporal.NewNonRetryableApplicationError(
			device.ClassifyLocationError(err),
			shared.ErrTypeLocationUnavailable,
			err,
		)
	}
	return coords, nil
}

// RecordConsent records agreement consent with the captured coordinates.
func (a *Activities) RecordConsent(ctx context.Context, loanID string, location shared.Coordinates) error {
	return a.Agreement.RecordConsent(ctx, loanID, location)
}

// GetUserPhone resolves the number the signing OTP is delivered to.
func (a *Activities) GetUserPhone(ctx context.Context, userID string) (string, error) {
	return a.Agreement.GetUserPhone(ctx, userID)
}

// SendAgreementOtp sends the signing OTP.
func (a *Activities) SendAgreementOtp(ctx context.Context, loanID, phoneNumber string) error {
	return a.Agreement.SendAgreementOtp(ctx, loanID, phoneNumber)
}

// VerifyAgreementOtp verifies the signing OTP along with the fixed agreement
// title/version/text payload.
func (a *Activities) VerifyAgreementOtp(ctx context.Context, loanID, code string) error {
	return a.Agreement.VerifyAgreementOtp(ctx, loanID, code,
		shared.AgreementTitle, shared.AgreementVersion, shared.AgreementText)
}
