package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"post-approval-verification/shared"
)

// aadhaarFlow holds the popup session state. A fresh session is created each
// time the popup opens and discarded when the workflow ends; nothing persists
// beyond the cached DigiLocker URL in the session store.
type aadhaarFlow struct {
	// Session state
	state         shared.AadhaarSessionState
	aadhaarNumber string
	otp           string
	otpSentAt     time.Time
	loading       bool
	autoSubmit    bool
	done          bool
	result        shared.FlowResult

	// Workflow context
	req    shared.AadhaarVerificationRequest
	logger log.Logger
	actCtx workflow.Context

	debounce       workflow.Future
	debounceCancel workflow.CancelFunc
}

// newAadhaarFlow initializes the session, registers the query handler and
// sets up activity options.
func newAadhaarFlow(ctx workflow.Context, req shared.AadhaarVerificationRequest) (*aadhaarFlow, error) {
	f := &aadhaarFlow{
		state:  shared.AadhaarSessionState{Step: shared.StepAadhaar},
		req:    req,
		logger: workflow.GetLogger(ctx),
	}

	err := workflow.SetQueryHandler(ctx, shared.QueryAadhaarSession, func() (shared.AadhaarSessionState, error) {
		s := f.state
		if s.Step == shared.StepOtp && !f.otpSentAt.IsZero() {
			left := shared.OtpResendWindow - workflow.Now(ctx).Sub(f.otpSentAt)
			if left < 0 {
				left = 0
			}
			s.OtpSecondsLeft = int(left.Seconds())
		}
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set query handler: %w", err)
	}

	// No activity retries: any failure, transient or not, converges to the
	// manual DigiLocker path rather than being retried behind a popup the
	// user may already have given up on.
	actOpts := workflow.ActivityOptions{
		TaskQueue:           shared.ActivityTaskQueue,
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	f.actCtx = workflow.WithActivityOptions(ctx, actOpts)

	return f, nil
}

// raiseFallback switches the popup to the manual DigiLocker overlay. The
// fallback panel and the inline error are mutually exclusive, so the error is
// always cleared here. URL resolution order: externally supplied URL, cached
// DigiLocker URL, freshly created URL, empty string.
func (f *aadhaarFlow) raiseFallback(ctx workflow.Context) {
	f.state.ShowFallback = true
	f.state.Error = ""

	if f.state.FallbackURL != "" {
		return
	}
	if f.req.FallbackURL != "" {
		f.state.FallbackURL = f.req.FallbackURL
		return
	}

	var cached string
	if err := workflow.ExecuteActivity(f.actCtx, a.GetCachedFallbackURL, f.req.LoanID).Get(ctx, &cached); err == nil && cached != "" {
		f.state.FallbackURL = cached
		return
	}

	var created string
	if err := workflow.ExecuteActivity(f.actCtx, a.CreateFallbackURL, f.req.LoanID).Get(ctx, &created); err == nil {
		f.state.FallbackURL = created
		return
	}

	f.state.FallbackURL = ""
}

// submitAadhaar validates the entered number, resolves the mobile number,
// saves the detail and sends the OTP. Validation failures stay inline; every
// service or transport failure converges to the fallback overlay.
func (f *aadhaarFlow) submitAadhaar(ctx workflow.Context, number string) {
	if f.loading || f.state.ShowFallback || f.state.Step != shared.StepAadhaar {
		return
	}
	if len(number) != shared.AadhaarLength || !allDigits(number) {
		f.state.Error = "Please enter a valid 12-digit Aadhaar number."
		return
	}
	f.state.Error = ""
	f.loading = true
	defer func() { f.loading = false }()

	if f.state.MobileNumber == "" {
		var detail shared.UserBasicDetail
		err := workflow.ExecuteActivity(f.actCtx, a.GetUserBasicDetail, f.req.UserID).Get(ctx, &detail)
		if err != nil || detail.MobileNumber == "" {
			f.logger.Info("Mobile number resolution failed, offering DigiLocker",
				"loanId", f.req.LoanID, "error", err)
			f.raiseFallback(ctx)
			return
		}
		f.state.MobileNumber = detail.MobileNumber
	}

	if err := workflow.ExecuteActivity(f.actCtx, a.SaveAadhaarDetail, f.req.UserID, number).Get(ctx, nil); err != nil {
		f.logger.Info("Aadhaar save failed, offering DigiLocker", "loanId", f.req.LoanID, "error", err)
		f.raiseFallback(ctx)
		return
	}
	if err := workflow.ExecuteActivity(f.actCtx, a.SendAadhaarOtp, f.req.UserID).Get(ctx, nil); err != nil {
		f.logger.Info("OTP send failed, offering DigiLocker", "loanId", f.req.LoanID, "error", err)
		f.raiseFallback(ctx)
		return
	}

	f.aadhaarNumber = number
	f.state.Step = shared.StepOtp
	f.otpSentAt = workflow.Now(ctx)
}

// submitOtp verifies the entered code. Failures converge to the fallback
// overlay; success completes the flow and discards the session.
func (f *aadhaarFlow) submitOtp(ctx workflow.Context, code string) {
	if f.loading || f.state.ShowFallback || f.state.Step != shared.StepOtp {
		return
	}
	if len(code) != shared.AadhaarOtpLength || !allDigits(code) {
		f.state.Error = "Please enter the 6-digit OTP."
		return
	}
	f.state.Error = ""
	f.loading = true
	defer func() { f.loading = false }()

	if err := workflow.ExecuteActivity(f.actCtx, a.VerifyAadhaarOtp, f.req.UserID, code).Get(ctx, nil); err != nil {
		f.logger.Info("OTP verification failed, offering DigiLocker", "loanId", f.req.LoanID, "error", err)
		f.raiseFallback(ctx)
		return
	}

	f.reset()
	f.done = true
	f.result = shared.FlowResult{Completed: true, Reason: "aadhaar-verified"}
}

// shouldAutoSubmit is the exact auto-submit guard: a complete code, no call
// in flight, no pending auto submission, the OTP screen, and neither an
// inline error nor the fallback overlay showing.
func (f *aadhaarFlow) shouldAutoSubmit() bool {
	return len(f.otp) == shared.AadhaarOtpLength &&
		!f.loading &&
		!f.autoSubmit &&
		f.state.Step == shared.StepOtp &&
		f.state.Error == "" &&
		!f.state.ShowFallback
}

// onOtpChanged tracks the OTP field and (re)arms the auto-submit debounce.
// The debounce lets the last keystroke settle before firing.
func (f *aadhaarFlow) onOtpChanged(ctx workflow.Context, code string) {
	f.otp = code
	f.cancelDebounce()

	if f.shouldAutoSubmit() {
		timerCtx, cancel := workflow.WithCancel(ctx)
		f.debounce = workflow.NewTimer(timerCtx, shared.AutoSubmitDebounce)
		f.debounceCancel = cancel
	}
}

func (f *aadhaarFlow) cancelDebounce() {
	if f.debounceCancel != nil {
		f.debounceCancel()
	}
	f.debounce = nil
	f.debounceCancel = nil
}

// resendOtp re-sends the OTP once the countdown has elapsed.
func (f *aadhaarFlow) resendOtp(ctx workflow.Context) {
	if f.loading || f.state.ShowFallback || f.state.Step != shared.StepOtp {
		return
	}
	if workflow.Now(ctx).Sub(f.otpSentAt) < shared.OtpResendWindow {
		return
	}
	f.loading = true
	defer func() { f.loading = false }()

	if err := workflow.ExecuteActivity(f.actCtx, a.SendAadhaarOtp, f.req.UserID).Get(ctx, nil); err != nil {
		f.raiseFallback(ctx)
		return
	}
	f.otpSentAt = workflow.Now(ctx)
	f.otp = ""
}

// tryAgain leaves the fallback overlay and returns to Aadhaar entry.
func (f *aadhaarFlow) tryAgain() {
	f.cancelDebounce()
	f.state.ShowFallback = false
	f.state.Error = ""
	f.state.Step = shared.StepAadhaar
	f.otp = ""
	f.aadhaarNumber = ""
}

// reset clears every session field; the popup never reopens with stale data.
func (f *aadhaarFlow) reset() {
	f.cancelDebounce()
	f.aadhaarNumber = ""
	f.otp = ""
	f.state = shared.AadhaarSessionState{Step: shared.StepAadhaar}
}

// AadhaarVerificationWorkflow runs the Aadhaar e-KYC popup: enter the Aadhaar
// number, then the OTP. Either state can raise the DigiLocker fallback
// overlay; the flow never dead-ends on an error.
func AadhaarVerificationWorkflow(ctx workflow.Context, req shared.AadhaarVerificationRequest) (shared.FlowResult, error) {
	f, err := newAadhaarFlow(ctx, req)
	if err != nil {
		return shared.FlowResult{}, err
	}

	f.logger.Info("Aadhaar verification started", "loanId", req.LoanID)

	aadhaarCh := workflow.GetSignalChannel(ctx, shared.SignalAadhaarSubmitted)
	otpCh := workflow.GetSignalChannel(ctx, shared.SignalOtpChanged)
	resendCh := workflow.GetSignalChannel(ctx, shared.SignalResendOtp)
	retryCh := workflow.GetSignalChannel(ctx, shared.SignalTryAgain)
	closeCh := workflow.GetSignalChannel(ctx, shared.SignalPopupClosed)

	for !f.done {
		selector := workflow.NewSelector(ctx)

		selector.AddReceive(aadhaarCh, func(ch workflow.ReceiveChannel, _ bool) {
			var sub shared.AadhaarSubmission
			ch.Receive(ctx, &sub)
			f.submitAadhaar(ctx, sub.AadhaarNumber)
		})
		selector.AddReceive(otpCh, func(ch workflow.ReceiveChannel, _ bool) {
			var entry shared.OtpEntry
			ch.Receive(ctx, &entry)
			f.onOtpChanged(ctx, entry.Code)
		})
		selector.AddReceive(resendCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.resendOtp(ctx)
		})
		selector.AddReceive(retryCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.tryAgain()
		})
		selector.AddReceive(closeCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.reset()
			f.done = true
			f.result = shared.FlowResult{Completed: false, Reason: "popup-closed"}
		})

		if f.debounce != nil {
			debounce := f.debounce
			selector.AddFuture(debounce, func(fut workflow.Future) {
				f.debounce = nil
				f.debounceCancel = nil
				if fut.Get(ctx, nil) != nil {
					return // debounce cancelled by a newer keystroke
				}
				if !f.shouldAutoSubmit() {
					return
				}
				f.autoSubmit = true
				f.submitOtp(ctx, f.otp)
				f.autoSubmit = false
			})
		}

		selector.Select(ctx)
	}

	return f.result, nil
}
