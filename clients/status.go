package clients

import (
	"context"
	"fmt"
	"net/http"

	"post-approval-verification/shared"
)

// StatusService exposes the per-loan post-approval status snapshot and the
// assigned-product endpoint the plan poller watches.
type StatusService interface {
	GetPostApprovalStatus(ctx context.Context, loanID string) (shared.PostApprovalStatus, error)
	GetAssignedProduct(ctx context.Context, userID string) (shared.AssignedProduct, error)
	GetEmiPlan(ctx context.Context, loanID, userID, productID string) (shared.EmiPlan, error)
}

// HTTPStatusService implements StatusService against the platform API.
type HTTPStatusService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPStatusService creates a new instance of HTTPStatusService.
func NewHTTPStatusService(baseURL string) *HTTPStatusService {
	return &HTTPStatusService{baseURL: baseURL, httpClient: newHTTPClient()}
}

func (c *HTTPStatusService) GetPostApprovalStatus(ctx context.Context, loanID string) (shared.PostApprovalStatus, error) {
	env, err := getJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/loan/%s/post-approval-status", c.baseURL, loanID))
	if err != nil {
		return shared.PostApprovalStatus{}, err
	}

	var status shared.PostApprovalStatus
	if err := decodeData(env, &status); err != nil {
		return shared.PostApprovalStatus{}, err
	}
	return status, nil
}

func (c *HTTPStatusService) GetAssignedProduct(ctx context.Context, userID string) (shared.AssignedProduct, error) {
	env, err := getJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/user/%s/assigned-product", c.baseURL, userID))
	if err != nil {
		return shared.AssignedProduct{}, err
	}

	var product shared.AssignedProduct
	if err := decodeData(env, &product); err != nil {
		return shared.AssignedProduct{}, err
	}
	return product, nil
}

func (c *HTTPStatusService) GetEmiPlan(ctx context.Context, loanID, userID, productID string) (shared.EmiPlan, error) {
	env, err := getJSON(ctx, c.httpClient,
		fmt.Sprintf("%s/api/loan/%s/emi-plan?userId=%s&productId=%s", c.baseURL, loanID, userID, productID))
	if err != nil {
		return shared.EmiPlan{}, err
	}

	var plan shared.EmiPlan
	if err := decodeData(env, &plan); err != nil {
		return shared.EmiPlan{}, err
	}
	return plan, nil
}
