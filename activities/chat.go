package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"post-approval-verification/shared"
)

// EnsureChatSession returns the user's chat session id, creating and caching
// one when none exists yet.
func (a *Activities) EnsureChatSession(ctx context.Context, userID string) (string, error) {
	logger := activity.GetLogger(ctx)

	sessionID, err := a.Sessions.RetrieveChatSession(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up chat session: %w", err)
	}
	if sessionID != "" {
		return sessionID, nil
	}

	sessionID, err = a.Chat.CreateSession(ctx)
	if err != nil {
		return "", err
	}
	if cacheErr := a.Sessions.StoreChatSession(ctx, userID, sessionID); cacheErr != nil {
		logger.Warn("Failed to cache chat session", "userId", userID, "error", cacheErr)
	}
	return sessionID, nil
}

// SendChatMessage posts a message into the conversational thread.
func (a *Activities) SendChatMessage(ctx context.Context, sessionID, text string) error {
	return a.Chat.SendMessage(ctx, sessionID, text)
}

// FormatPlanSummary renders the selected EMI plan as the human-readable chat
// message. Pure formatting lives in an activity so the message template can
// change without a workflow version bump.
func (a *Activities) FormatPlanSummary(_ context.Context, plan shared.EmiPlan) (string, error) {
	return fmt.Sprintf(
		"Payment plan selected: %s — %d monthly installments of ₹%.2f (total ₹%.2f).",
		plan.PlanName, plan.TenureMonths, plan.MonthlyInstallment, plan.TotalAmount,
	), nil
}
