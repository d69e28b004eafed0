package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"post-approval-verification/shared"
)

// GetUserBasicDetail resolves the user's registered mobile number; Aadhaar
// submission requires it.
func (a *Activities) GetUserBasicDetail(ctx context.Context, userID string) (shared.UserBasicDetail, error) {
	logger := activity.GetLogger(ctx)

	detail, err := a.Identity.GetUserBasicDetail(ctx, userID)
	if err != nil {
		logger.Error("Basic detail lookup failed", "userId", userID, "error", err)
		return shared.UserBasicDetail{}, err
	}
	return detail, nil
}

// SaveAadhaarDetail persists the entered Aadhaar number.
func (a *Activities) SaveAadhaarDetail(ctx context.Context, userID, aadhaarNumber string) error {
	return a.Identity.SaveAadhaarDetail(ctx, userID, aadhaarNumber)
}

// SendAadhaarOtp delivers the Aadhaar verification OTP.
func (a *Activities) SendAadhaarOtp(ctx context.Context, userID string) error {
	return a.Identity.SendOtp(ctx, userID)
}

// VerifyAadhaarOtp checks the entered OTP code.
func (a *Activities) VerifyAadhaarOtp(ctx context.Context, userID, code string) error {
	return a.Identity.VerifyOtp(ctx, userID, code)
}

// GetCachedFallbackURL returns the DigiLocker URL previously created for this
// loan, or "" when none is cached.
func (a *Activities) GetCachedFallbackURL(ctx context.Context, loanID string) (string, error) {
	return a.Sessions.RetrieveFallbackURL(ctx, loanID)
}

// CreateFallbackURL creates a fresh DigiLocker URL for the loan and caches it
// so a reopened popup resolves the same URL.
func (a *Activities) CreateFallbackURL(ctx context.Context, loanID string) (string, error) {
	logger := activity.GetLogger(ctx)

	url, err := a.Identity.CreateFallbackURL(ctx, loanID)
	if err != nil {
		return "", err
	}

	if cacheErr := a.Sessions.StoreFallbackURL(ctx, loanID, url); cacheErr != nil {
		// The URL is still usable; losing the cache only costs a re-create later.
		logger.Warn("Failed to cache fallback URL", "loanId", loanID, "error", cacheErr)
	}
	return url, nil
}
