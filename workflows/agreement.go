package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"post-approval-verification/shared"
)

// agreementFlow holds the e-sign popup session. Consent is only ever marked
// checked after the server recorded it together with a captured geolocation.
type agreementFlow struct {
	state    shared.AgreementSessionState
	location shared.Coordinates
	phone    string
	done     bool
	result   shared.FlowResult

	req    shared.AgreementSigningRequest
	logger log.Logger
	actCtx workflow.Context
}

func newAgreementFlow(ctx workflow.Context, req shared.AgreementSigningRequest) (*agreementFlow, error) {
	f := &agreementFlow{
		state:  shared.AgreementSessionState{Step: shared.StepLanguage},
		req:    req,
		logger: workflow.GetLogger(ctx),
	}

	err := workflow.SetQueryHandler(ctx, shared.QueryAgreementSession, func() (shared.AgreementSessionState, error) {
		return f.state, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set query handler: %w", err)
	}

	actOpts := workflow.ActivityOptions{
		TaskQueue:           shared.ActivityTaskQueue,
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	f.actCtx = workflow.WithActivityOptions(ctx, actOpts)

	return f, nil
}

// selectLanguage generates the agreement in the chosen language and moves to
// the documents screen, where geolocation capture starts immediately.
func (f *agreementFlow) selectLanguage(ctx workflow.Context, language string) {
	if f.state.Step != shared.StepLanguage || language == "" {
		return
	}

	if err := workflow.ExecuteActivity(f.actCtx, a.InitiateAgreement, f.req.LoanID, language).Get(ctx, nil); err != nil {
		f.state.Error = "We couldn't prepare your agreement. Please try again."
		return
	}
	var urls shared.AgreementURLs
	if err := workflow.ExecuteActivity(f.actCtx, a.GetAgreementURL, f.req.LoanID).Get(ctx, &urls); err != nil {
		f.state.Error = "We couldn't load your agreement documents. Please try again."
		return
	}

	f.state.Language = language
	f.state.URLs = &urls
	f.state.Error = ""
	f.state.Step = shared.StepDocuments

	f.captureLocation(ctx)
}

// captureLocation fetches the device position. The consent record requires it,
// so a failure surfaces as a location error with an explicit retry action.
func (f *agreementFlow) captureLocation(ctx workflow.Context) {
	var coords shared.Coordinates
	if err := workflow.ExecuteActivity(f.actCtx, a.CaptureLocation, f.req.UserID).Get(ctx, &coords); err != nil {
		f.state.HasLocation = false
		f.state.LocationError = applicationErrorMessage(err, "We couldn't determine your location. Please try again.")
		return
	}
	f.location = coords
	f.state.HasLocation = true
	f.state.LocationError = ""
}

// proceed advances documents → consent, and consent → OTP once consent is
// recorded. Entering the OTP screen resolves the delivery number and sends
// the signing OTP.
func (f *agreementFlow) proceed(ctx workflow.Context) {
	switch f.state.Step {
	case shared.StepDocuments:
		f.state.Error = ""
		f.state.Step = shared.StepConsent
	case shared.StepConsent:
		if !f.state.ConsentChecked {
			f.state.Error = "Please accept the agreement to continue."
			return
		}

		var phone string
		if err := workflow.ExecuteActivity(f.actCtx, a.GetUserPhone, f.req.UserID).Get(ctx, &phone); err != nil {
			f.state.Error = "We couldn't find your registered phone number. Please try again."
			return
		}
		if err := workflow.ExecuteActivity(f.actCtx, a.SendAgreementOtp, f.req.LoanID, phone).Get(ctx, nil); err != nil {
			f.state.Error = "We couldn't send the OTP. Please try again."
			return
		}

		f.phone = phone
		f.state.Error = ""
		f.state.Step = shared.StepSignOtp
	}
}

// onConsentChanged mirrors the consent checkbox. Checking it records consent
// server-side with the captured coordinates; the checkbox stays unchecked
// when the record call fails, so ConsentChecked never overstates the server.
func (f *agreementFlow) onConsentChanged(ctx workflow.Context, checked bool) {
	if f.state.Step != shared.StepConsent {
		return
	}
	if !checked {
		f.state.ConsentChecked = false
		return
	}
	if !f.state.HasLocation {
		f.state.ConsentChecked = false
		f.state.Error = "We need your location before you can accept. Please allow location access."
		return
	}

	if err := workflow.ExecuteActivity(f.actCtx, a.RecordConsent, f.req.LoanID, f.location).Get(ctx, nil); err != nil {
		f.state.ConsentChecked = false
		f.state.Error = "We couldn't record your consent. Please try again."
		return
	}
	f.state.ConsentChecked = true
	f.state.Error = ""
}

// submitOtp verifies the signing OTP and lands on the success screen.
func (f *agreementFlow) submitOtp(ctx workflow.Context, code string) {
	if f.state.Step != shared.StepSignOtp {
		return
	}
	if len(code) != shared.AgreementOtpLength || !allDigits(code) {
		f.state.Error = "Please enter the 4-digit OTP."
		return
	}

	if err := workflow.ExecuteActivity(f.actCtx, a.VerifyAgreementOtp, f.req.LoanID, code).Get(ctx, nil); err != nil {
		f.state.Error = "That OTP didn't match. Please try again."
		return
	}

	f.state.Error = ""
	f.state.Step = shared.StepSuccess
}

// AgreementSigningWorkflow runs the agreement popup: language selection,
// document review, consent with geolocation, then OTP signing.
func AgreementSigningWorkflow(ctx workflow.Context, req shared.AgreementSigningRequest) (shared.FlowResult, error) {
	f, err := newAgreementFlow(ctx, req)
	if err != nil {
		return shared.FlowResult{}, err
	}

	f.logger.Info("Agreement signing started", "loanId", req.LoanID)

	languageCh := workflow.GetSignalChannel(ctx, shared.SignalLanguageSelected)
	retryLocCh := workflow.GetSignalChannel(ctx, shared.SignalRetryLocation)
	proceedCh := workflow.GetSignalChannel(ctx, shared.SignalProceed)
	consentCh := workflow.GetSignalChannel(ctx, shared.SignalConsentChecked)
	otpCh := workflow.GetSignalChannel(ctx, shared.SignalAgreementOtp)
	closeCh := workflow.GetSignalChannel(ctx, shared.SignalPopupClosed)

	for !f.done {
		selector := workflow.NewSelector(ctx)

		selector.AddReceive(languageCh, func(ch workflow.ReceiveChannel, _ bool) {
			var sel shared.LanguageSelection
			ch.Receive(ctx, &sel)
			f.selectLanguage(ctx, sel.Language)
		})
		selector.AddReceive(retryLocCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.captureLocation(ctx)
		})
		selector.AddReceive(proceedCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.proceed(ctx)
		})
		selector.AddReceive(consentCh, func(ch workflow.ReceiveChannel, _ bool) {
			var change shared.ConsentChange
			ch.Receive(ctx, &change)
			f.onConsentChanged(ctx, change.Checked)
		})
		selector.AddReceive(otpCh, func(ch workflow.ReceiveChannel, _ bool) {
			var entry shared.OtpEntry
			ch.Receive(ctx, &entry)
			f.submitOtp(ctx, entry.Code)
		})
		selector.AddReceive(closeCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.done = true
			f.result = shared.FlowResult{Completed: false, Reason: "popup-closed"}
		})

		selector.Select(ctx)

		if f.state.Step == shared.StepSuccess && !f.done {
			_ = workflow.Sleep(ctx, shared.SuccessDwell)
			f.done = true
			f.result = shared.FlowResult{Completed: true, Reason: "agreement-signed"}
		}
	}

	return f.result, nil
}
