package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"post-approval-verification/shared"
)

// PlanSelectionPollerWorkflow watches for the user finishing plan selection
// inside the embedded iframe. It polls the assigned product on a fixed
// interval, bounded by both an attempt cap and a wall-clock deadline, and
// posts the plan summary into the chat thread at most once. Exhausting the
// bounds ends the poller silently; that is not a failure.
func PlanSelectionPollerWorkflow(ctx workflow.Context, req shared.PlanPollRequest) (shared.PlanPollResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Plan selection polling started", "loanId", req.LoanID)

	actOpts := workflow.ActivityOptions{
		TaskQueue:           shared.ActivityTaskQueue,
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	sessionID := req.ChatSessionID
	if sessionID == "" {
		if err := workflow.ExecuteActivity(actCtx, a.EnsureChatSession, req.UserID).Get(ctx, &sessionID); err != nil {
			logger.Warn("No chat session available, polling without a summary target", "error", err)
		}
	}

	closeCh := workflow.GetSignalChannel(ctx, shared.SignalIframeClosed)
	deadline := workflow.Now(ctx).Add(shared.PlanPollDeadline)

	var result shared.PlanPollResult
	closed := false

	for result.Attempts < shared.MaxPlanPollAttempts && !closed && workflow.Now(ctx).Before(deadline) {
		timerCtx, cancelTimer := workflow.WithCancel(ctx)
		tick := workflow.NewTimer(timerCtx, shared.PlanPollInterval)

		ticked := false
		selector := workflow.NewSelector(ctx)
		selector.AddFuture(tick, func(fut workflow.Future) {
			if fut.Get(ctx, nil) == nil {
				ticked = true
			}
		})
		selector.AddReceive(closeCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			closed = true
		})
		selector.Select(ctx)
		cancelTimer()

		if !ticked {
			continue
		}
		result.Attempts++

		var product shared.AssignedProduct
		if err := workflow.ExecuteActivity(actCtx, a.GetAssignedProduct, req.UserID).Get(ctx, &product); err != nil {
			// A failed poll tick is just a miss; the next tick retries.
			continue
		}
		if product.ProductID == "" {
			continue
		}

		result.Completed = true
		logger.Info("Plan selection detected",
			"loanId", req.LoanID, "productId", product.ProductID, "attempts", result.Attempts)

		if sessionID == "" || result.SummarySent {
			break
		}

		var plan shared.EmiPlan
		if err := workflow.ExecuteActivity(actCtx, a.GetEmiPlan, req.LoanID, req.UserID, product.ProductID).Get(ctx, &plan); err != nil {
			logger.Warn("Failed to fetch selected plan for summary", "error", err)
			break
		}
		var summary string
		if err := workflow.ExecuteActivity(actCtx, a.FormatPlanSummary, plan).Get(ctx, &summary); err != nil {
			break
		}
		if err := workflow.ExecuteActivity(actCtx, a.SendChatMessage, sessionID, summary).Get(ctx, nil); err != nil {
			logger.Warn("Failed to post plan summary", "error", err)
			break
		}
		result.SummarySent = true
		break
	}

	return result, nil
}
