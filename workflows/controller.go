package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"post-approval-verification/shared"
)

// verificationStep is one entry in the ordered post-approval sequence.
type verificationStep struct {
	name string
	done func(shared.PostApprovalStatus) bool
	run  func(workflow.Context, shared.PostApprovalRequest) (shared.FlowResult, error)
}

// postApprovalSteps is the fixed order the flows run in. The completion
// snapshot is server-sourced, so a step finished in an earlier session (or on
// another device) is skipped here without re-running it.
var postApprovalSteps = []verificationStep{
	{
		name: "aadhaar",
		done: func(s shared.PostApprovalStatus) bool { return s.AadhaarVerified },
		run: func(ctx workflow.Context, req shared.PostApprovalRequest) (shared.FlowResult, error) {
			var result shared.FlowResult
			err := workflow.ExecuteChildWorkflow(ctx, AadhaarVerificationWorkflow, shared.AadhaarVerificationRequest{
				LoanID:      req.LoanID,
				UserID:      req.UserID,
				FallbackURL: req.FallbackURL,
			}).Get(ctx, &result)
			return result, err
		},
	},
	{
		name: "face",
		done: func(s shared.PostApprovalStatus) bool { return s.Selfie },
		run: func(ctx workflow.Context, req shared.PostApprovalRequest) (shared.FlowResult, error) {
			var result shared.FlowResult
			err := workflow.ExecuteChildWorkflow(ctx, FaceVerificationWorkflow, shared.FaceVerificationRequest{
				LoanID: req.LoanID,
				UserID: req.UserID,
			}).Get(ctx, &result)
			return result, err
		},
	},
	{
		name: "autopay",
		done: func(s shared.PostApprovalStatus) bool { return s.AutoPay },
		run: func(ctx workflow.Context, req shared.PostApprovalRequest) (shared.FlowResult, error) {
			var result shared.FlowResult
			err := workflow.ExecuteChildWorkflow(ctx, EmiAutoPayWorkflow, shared.MandateSetupRequest{
				LoanID: req.LoanID,
				UserID: req.UserID,
			}).Get(ctx, &result)
			return result, err
		},
	},
	{
		name: "agreement",
		done: func(s shared.PostApprovalStatus) bool { return s.AgreementSetup },
		run: func(ctx workflow.Context, req shared.PostApprovalRequest) (shared.FlowResult, error) {
			var result shared.FlowResult
			err := workflow.ExecuteChildWorkflow(ctx, AgreementSigningWorkflow, shared.AgreementSigningRequest{
				LoanID: req.LoanID,
				UserID: req.UserID,
			}).Get(ctx, &result)
			return result, err
		},
	},
}

// childOptions builds deterministic child workflow ids so the web gateway can
// signal a flow knowing only the loan id and the step name.
func childOptions(ctx workflow.Context, step, loanID string) workflow.Context {
	return workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
		WorkflowID: fmt.Sprintf("%s-%s", step, loanID),
		TaskQueue:  shared.VerificationWorkflowTaskQueue,
	})
}

// PostApprovalWorkflow sequences the four verification flows for an approved
// loan, skipping the ones the server already marks complete, then waits for
// the plan-selection iframe and runs the status poller for it.
func PostApprovalWorkflow(ctx workflow.Context, req shared.PostApprovalRequest) (string, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Post-approval verification started", "loanId", req.LoanID)

	currentStep := ""
	var status shared.PostApprovalStatus

	err := workflow.SetQueryHandler(ctx, shared.QueryPostApprovalProgress, func() (shared.PostApprovalProgress, error) {
		return shared.PostApprovalProgress{CurrentStep: currentStep, Status: status}, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to set query handler: %w", err)
	}

	actOpts := workflow.ActivityOptions{
		TaskQueue:           shared.ActivityTaskQueue,
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	fetchStatus := func() error {
		return workflow.ExecuteActivity(actCtx, a.FetchPostApprovalStatus, req.LoanID).Get(ctx, &status)
	}
	if err := fetchStatus(); err != nil {
		return "", fmt.Errorf("failed to fetch post-approval status: %w", err)
	}

	for _, step := range postApprovalSteps {
		if step.done(status) {
			logger.Info("Step already complete, skipping", "loanId", req.LoanID, "step", step.name)
			continue
		}
		currentStep = step.name

		result, err := step.run(childOptions(ctx, step.name, req.LoanID), req)
		if err != nil {
			return "", fmt.Errorf("%s flow failed: %w", step.name, err)
		}
		if !result.Completed {
			logger.Info("Step abandoned", "loanId", req.LoanID, "step", step.name, "reason", result.Reason)
			return fmt.Sprintf("POSTAPPROVAL-%s-ABANDONED-%s", req.LoanID, strings.ToUpper(step.name)), nil
		}

		// The server is the source of truth; re-fetch rather than marking
		// the step complete locally.
		if err := fetchStatus(); err != nil {
			return "", fmt.Errorf("failed to refresh post-approval status: %w", err)
		}
	}
	currentStep = "plan-selection"

	// All verification steps are done. Wait for the plan-selection iframe to
	// open, then poll it; if it never opens, finish without a summary.
	iframeCh := workflow.GetSignalChannel(ctx, shared.SignalPlanIframeOpened)
	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	wait := workflow.NewTimer(timerCtx, shared.PlanIframeWait)

	opened := false
	var iframe shared.PlanIframeOpened

	selector := workflow.NewSelector(ctx)
	selector.AddReceive(iframeCh, func(ch workflow.ReceiveChannel, _ bool) {
		ch.Receive(ctx, &iframe)
		opened = true
	})
	selector.AddFuture(wait, func(fut workflow.Future) {
		_ = fut.Get(ctx, nil)
	})
	selector.Select(ctx)
	cancelTimer()

	if opened {
		sessionID := iframe.ChatSessionID
		if sessionID == "" {
			sessionID = req.ChatSessionID
		}

		var pollResult shared.PlanPollResult
		pollCtx := childOptions(ctx, "plan-poller", req.LoanID)
		err := workflow.ExecuteChildWorkflow(pollCtx, PlanSelectionPollerWorkflow, shared.PlanPollRequest{
			LoanID:        req.LoanID,
			UserID:        req.UserID,
			ChatSessionID: sessionID,
		}).Get(ctx, &pollResult)
		if err != nil {
			return "", fmt.Errorf("plan poller failed: %w", err)
		}
		logger.Info("Plan polling finished",
			"loanId", req.LoanID,
			"completed", pollResult.Completed,
			"attempts", pollResult.Attempts,
			"summarySent", pollResult.SummarySent,
		)
	} else {
		logger.Info("Plan-selection iframe never opened", "loanId", req.LoanID)
	}

	currentStep = "done"
	return fmt.Sprintf("POSTAPPROVAL-%s-VERIFIED", req.LoanID), nil
}
