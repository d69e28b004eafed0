package activities

import (
	"context"

	"post-approval-verification/shared"
)

// FetchPostApprovalStatus returns the server-sourced step-completion snapshot.
func (a *Activities) FetchPostApprovalStatus(ctx context.Context, loanID string) (shared.PostApprovalStatus, error) {
	return a.Status.GetPostApprovalStatus(ctx, loanID)
}

// GetAssignedProduct is the plan poller's tick target; an empty ProductID
// means the user has not completed plan selection yet.
func (a *Activities) GetAssignedProduct(ctx context.Context, userID string) (shared.AssignedProduct, error) {
	return a.Status.GetAssignedProduct(ctx, userID)
}

// GetEmiPlan fetches the EMI plan matching the assigned product.
func (a *Activities) GetEmiPlan(ctx context.Context, loanID, userID, productID string) (shared.EmiPlan, error) {
	return a.Status.GetEmiPlan(ctx, loanID, userID, productID)
}
