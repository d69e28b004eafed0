package shared

import "time"

// Task queue names.
const (
	VerificationWorkflowTaskQueue = "post-approval-workflow-tq"
	ActivityTaskQueue             = "post-approval-activity-tq"
)

// Signal names. Every UI event the web client can produce maps to exactly
// one signal; flows ignore signals that do not apply to their current step.
const (
	// Aadhaar flow
	SignalAadhaarSubmitted = "signal-aadhaar-submitted"
	SignalOtpChanged       = "signal-otp-changed"
	SignalResendOtp        = "signal-resend-otp"
	SignalTryAgain         = "signal-try-again"

	// Face flow
	SignalStartCamera  = "signal-start-camera"
	SignalCaptureFrame = "signal-capture-frame"
	SignalRetakePhoto  = "signal-retake-photo"
	SignalConfirmPhoto = "signal-confirm-photo"

	// EMI auto-pay flow
	SignalProceed              = "signal-proceed"
	SignalIfscChanged          = "signal-ifsc-changed"
	SignalBankDetailsSubmitted = "signal-bank-details-submitted"
	SignalPaymentMethodChosen  = "signal-payment-method-chosen"
	SignalRedirectReturn       = "signal-redirect-return"

	// Agreement flow
	SignalLanguageSelected = "signal-language-selected"
	SignalRetryLocation    = "signal-retry-location"
	SignalConsentChecked   = "signal-consent-checked"
	SignalAgreementOtp     = "signal-agreement-otp"

	// Shared across flows
	SignalPopupClosed      = "signal-popup-closed"
	SignalPlanIframeOpened = "signal-plan-iframe-opened"
	SignalIframeClosed     = "signal-iframe-closed"
)

// Query names.
const (
	QueryPostApprovalProgress = "query-post-approval-progress"
	QueryAadhaarSession       = "query-aadhaar-session"
	QueryFaceSession          = "query-face-session"
	QueryMandateSession       = "query-mandate-session"
	QueryAgreementSession     = "query-agreement-session"
)

// Input validation lengths.
const (
	AadhaarLength      = 12
	AadhaarOtpLength   = 6
	AgreementOtpLength = 4
	IFSCLength         = 11
)

// Face verification thresholds. The liveliness comparison is strict:
// a score of exactly 0.90 does not pass.
const (
	LivelinessThreshold = 0.90
	MinCaptureBytes     = 2048
	CaptureJpegQuality  = 0.8
)

// Timing rules.
const (
	AutoSubmitDebounce = 100 * time.Millisecond
	SuccessDwell       = 2 * time.Second
	OtpResendWindow    = 30 * time.Second

	PlanPollInterval    = 2 * time.Second
	MaxPlanPollAttempts = 150
	PlanPollDeadline    = 5 * time.Minute

	// How long the controller waits for the plan-selection iframe to open
	// after the last verification step before finishing without a summary.
	PlanIframeWait = 30 * time.Minute
)

// Fixed agreement payload sent alongside the verification OTP.
const (
	AgreementTitle   = "Loan Agreement"
	AgreementVersion = "v1.2"
	AgreementText    = "I have read and agree to the terms of the loan agreement and the Key Fact Statement."
)

// Error types for non-retryable failures.
const (
	ErrTypeVerificationRejected = "VerificationRejected"
	ErrTypeCameraUnavailable    = "CameraUnavailable"
	ErrTypeLocationUnavailable  = "LocationUnavailable"
	ErrTypeCorruptFrame         = "CorruptFrame"
)
