package activities

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"

	"post-approval-verification/esign"
	"post-approval-verification/shared"
)

// GetAccountInfo fetches a previously saved bank account for pre-filling the
// bank-details form.
func (a *Activities) GetAccountInfo(ctx context.Context, userID string) (shared.AccountInfo, error) {
	return a.Mandate.GetAccountInfo(ctx, userID)
}

// AddAccountDetails persists the validated bank-details form.
func (a *Activities) AddAccountDetails(ctx context.Context, userID string, details shared.BankDetailsSubmission) error {
	return a.Mandate.AddAccountDetails(ctx, userID, details)
}

// GetMandateBankDetail reports the mandate channels the user's bank supports.
func (a *Activities) GetMandateBankDetail(ctx context.Context, userID string) (shared.MandateBankInfo, error) {
	return a.Mandate.GetMandateBankDetail(ctx, userID)
}

// LookupIFSC resolves a complete routing code into bank and branch details.
func (a *Activities) LookupIFSC(ctx context.Context, code string) (shared.IFSCDetails, error) {
	return a.IFSC.Lookup(ctx, code)
}

// CreateMandateRequest creates the mandate server-side for the chosen
// payment method.
func (a *Activities) CreateMandateRequest(ctx context.Context, loanID, method string) (shared.MandateRequestInfo, error) {
	return a.Mandate.CreateMandateRequest(ctx, loanID, method)
}

// SignMandate drives the injected e-sign adapter for the created mandate.
// When the adapter is unavailable, the authentication URL becomes the
// fallback channel and the flow treats the hand-off as completion.
func (a *Activities) SignMandate(ctx context.Context, req shared.SignMandateRequest) (shared.SignMandateResult, error) {
	logger := activity.GetLogger(ctx)

	err := a.Signer.Init(ctx)
	if err == nil {
		err = a.Signer.Submit(ctx, req.MandateID, req.PhoneNumber, req.Token)
	}

	if errors.Is(err, esign.ErrUnavailable) {
		if req.AuthenticationURL == "" {
			return shared.SignMandateResult{}, fmt.Errorf("signing SDK unavailable and no authentication URL to fall back to")
		}
		logger.Info("Signing SDK unavailable, falling back to authentication URL",
			"mandateId", req.MandateID,
		)
		return shared.SignMandateResult{UsedFallback: true, AuthenticationURL: req.AuthenticationURL}, nil
	}
	if err != nil {
		return shared.SignMandateResult{}, err
	}

	logger.Info("Mandate submitted to signing SDK", "mandateId", req.MandateID)
	return shared.SignMandateResult{}, nil
}
