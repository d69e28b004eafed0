package workflows

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"post-approval-verification/shared"
)

// mandateFlow holds the auto-pay popup session. The four screens form a
// strictly forward walk; advance is the only way to change screens and it
// moves exactly one position.
type mandateFlow struct {
	state           shared.MandateSessionState
	mandate         shared.MandateRequestInfo
	redirectHandled bool
	done            bool
	result          shared.FlowResult

	req    shared.MandateSetupRequest
	logger log.Logger
	actCtx workflow.Context
}

func newMandateFlow(ctx workflow.Context, req shared.MandateSetupRequest) (*mandateFlow, error) {
	f := &mandateFlow{
		state:  shared.MandateSessionState{Screen: shared.ScreenIntro},
		req:    req,
		logger: workflow.GetLogger(ctx),
	}

	err := workflow.SetQueryHandler(ctx, shared.QueryMandateSession, func() (shared.MandateSessionState, error) {
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

// prefill loads a previously saved account into the bank-details form. A
// lookup failure just means an empty form; it never blocks the flow.
func (f *mandateFlow) prefill(ctx workflow.Context) {
	var info shared.AccountInfo
	if err := workflow.ExecuteActivity(f.actCtx, a.GetAccountInfo, f.req.UserID).Get(ctx, &info); err != nil {
		f.logger.Info("Account prefill unavailable", "userId", f.req.UserID, "error", err)
		return
	}
	if !info.Exists {
		return
	}
	f.state.AccountNumber = info.AccountNumber
	f.state.HolderName = info.HolderName
	f.state.IFSC = info.IFSC
}

// advance moves one position forward in the screen order. It is deliberately
// the only screen mutation: there is no way to express a skip with it.
func (f *mandateFlow) advance() {
	for i, screen := range shared.MandateScreenOrder {
		if screen == f.state.Screen {
			if i+1 < len(shared.MandateScreenOrder) {
				f.state.Screen = shared.MandateScreenOrder[i+1]
				f.state.Error = ""
			}
			return
		}
	}
}

// proceed handles the explicit continue button. On the confirmation screen it
// resolves which mandate channels the bank supports before moving on.
func (f *mandateFlow) proceed(ctx workflow.Context) {
	switch f.state.Screen {
	case shared.ScreenIntro:
		f.advance()
	case shared.ScreenConfirmation:
		var info shared.MandateBankInfo
		if err := workflow.ExecuteActivity(f.actCtx, a.GetMandateBankDetail, f.req.UserID).Get(ctx, &info); err != nil {
			f.state.Error = "We couldn't load your bank's auto-pay options. Please try again."
			return
		}
		f.state.AllowedMethods = info.AllowedAuthSubType
		f.advance()
	}
}

// onIfscChanged tracks the routing-code field. Lookup happens only once the
// code is complete; an invalid code is an inline field error and never moves
// the screen.
func (f *mandateFlow) onIfscChanged(ctx workflow.Context, code string) {
	if f.state.Screen != shared.ScreenBankDetails {
		return
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	f.state.IFSC = code

	if len(code) != shared.IFSCLength {
		f.state.IFSCDetails = nil
		f.state.IFSCError = ""
		return
	}

	var details shared.IFSCDetails
	if err := workflow.ExecuteActivity(f.actCtx, a.LookupIFSC, code).Get(ctx, &details); err != nil {
		f.state.IFSCDetails = nil
		f.state.IFSCError = "Invalid IFSC code"
		return
	}
	f.state.IFSCDetails = &details
	f.state.IFSCError = ""
}

// submitBankDetails validates and saves the form. The resolved IFSC is a
// precondition: the form cannot be submitted around a failed lookup.
func (f *mandateFlow) submitBankDetails(ctx workflow.Context, sub shared.BankDetailsSubmission) {
	if f.state.Screen != shared.ScreenBankDetails {
		return
	}

	if sub.AccountNumber == "" || sub.AccountNumber != sub.ConfirmAccountNumber {
		f.state.Error = "Account numbers don't match."
		return
	}
	if strings.TrimSpace(sub.HolderName) == "" {
		f.state.Error = "Please enter the account holder's name."
		return
	}
	if f.state.IFSCDetails == nil || sub.IFSC != f.state.IFSC {
		f.state.Error = "Please enter a valid IFSC code."
		return
	}

	if err := workflow.ExecuteActivity(f.actCtx, a.AddAccountDetails, f.req.UserID, sub).Get(ctx, nil); err != nil {
		f.state.Error = "We couldn't save your bank details. Please try again."
		return
	}

	f.state.AccountNumber = sub.AccountNumber
	f.state.HolderName = sub.HolderName
	f.advance()
}

// choosePaymentMethod creates the mandate and hands it to the signing
// adapter. When the adapter falls back to the authentication URL the hand-off
// itself completes the flow; otherwise the flow waits for the redirect return.
func (f *mandateFlow) choosePaymentMethod(ctx workflow.Context, choice shared.PaymentMethodChoice) {
	if f.state.Screen != shared.ScreenPaymentMethods {
		return
	}
	if !slices.Contains(f.state.AllowedMethods, choice.Method) {
		f.state.Error = "Please choose one of the available payment methods."
		return
	}

	f.state.SelectedMethod = choice.Method

	var info shared.MandateRequestInfo
	if err := workflow.ExecuteActivity(f.actCtx, a.CreateMandateRequest, f.req.LoanID, choice.Method).Get(ctx, &info); err != nil {
		f.state.Error = "We couldn't set up auto-pay. Please try again."
		return
	}
	f.mandate = info

	var signed shared.SignMandateResult
	signReq := shared.SignMandateRequest{
		MandateID:         info.MandateID,
		PhoneNumber:       info.PhoneNumber,
		AuthenticationURL: info.AuthenticationURL,
	}
	if err := workflow.ExecuteActivity(f.actCtx, a.SignMandate, signReq).Get(ctx, &signed); err != nil {
		f.state.Error = "We couldn't start the signing step. Please try again."
		return
	}
	f.state.Error = ""

	if signed.UsedFallback {
		f.done = true
		f.result = shared.FlowResult{Completed: true, Reason: "mandate-authentication-url"}
		return
	}
	f.redirectHandled = false
}

// onRedirectReturn consumes the signing redirect exactly once per mandate. An
// error code re-opens the payment-method screen so the mandate can be created
// again; a clean return with both identifiers completes the flow.
func (f *mandateFlow) onRedirectReturn(ctx workflow.Context, ret shared.RedirectReturn) {
	if f.redirectHandled || f.mandate.MandateID == "" {
		return
	}
	f.redirectHandled = true

	if ret.ErrorCode != "" {
		f.logger.Info("Mandate signing returned an error",
			"loanId", f.req.LoanID, "errorCode", ret.ErrorCode)
		f.state.Error = "Auto-pay setup wasn't completed. Please choose a payment method to try again."
		f.mandate = shared.MandateRequestInfo{}
		return
	}
	if ret.TransactionID == "" || ret.DocumentID == "" {
		return
	}

	f.done = true
	f.result = shared.FlowResult{Completed: true, Reason: "mandate-signed"}
}

// EmiAutoPayWorkflow runs the auto-pay popup: intro, bank details,
// confirmation, then payment methods, ending in a signed (or handed-off)
// mandate.
func EmiAutoPayWorkflow(ctx workflow.Context, req shared.MandateSetupRequest) (shared.FlowResult, error) {
	f, err := newMandateFlow(ctx, req)
	if err != nil {
		return shared.FlowResult{}, err
	}

	f.logger.Info("Auto-pay setup started", "loanId", req.LoanID)
	f.prefill(ctx)

	proceedCh := workflow.GetSignalChannel(ctx, shared.SignalProceed)
	ifscCh := workflow.GetSignalChannel(ctx, shared.SignalIfscChanged)
	bankCh := workflow.GetSignalChannel(ctx, shared.SignalBankDetailsSubmitted)
	methodCh := workflow.GetSignalChannel(ctx, shared.SignalPaymentMethodChosen)
	redirectCh := workflow.GetSignalChannel(ctx, shared.SignalRedirectReturn)
	closeCh := workflow.GetSignalChannel(ctx, shared.SignalPopupClosed)

	for !f.done {
		selector := workflow.NewSelector(ctx)

		selector.AddReceive(proceedCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.proceed(ctx)
		})
		selector.AddReceive(ifscCh, func(ch workflow.ReceiveChannel, _ bool) {
			var entry shared.IFSCEntry
			ch.Receive(ctx, &entry)
			f.onIfscChanged(ctx, entry.Code)
		})
		selector.AddReceive(bankCh, func(ch workflow.ReceiveChannel, _ bool) {
			var sub shared.BankDetailsSubmission
			ch.Receive(ctx, &sub)
			f.submitBankDetails(ctx, sub)
		})
		selector.AddReceive(methodCh, func(ch workflow.ReceiveChannel, _ bool) {
			var choice shared.PaymentMethodChoice
			ch.Receive(ctx, &choice)
			f.choosePaymentMethod(ctx, choice)
		})
		selector.AddReceive(redirectCh, func(ch workflow.ReceiveChannel, _ bool) {
			var ret shared.RedirectReturn
			ch.Receive(ctx, &ret)
			f.onRedirectReturn(ctx, ret)
		})
		selector.AddReceive(closeCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.done = true
			f.result = shared.FlowResult{Completed: false, Reason: "popup-closed"}
		})

		selector.Select(ctx)
	}

	return f.result, nil
}
