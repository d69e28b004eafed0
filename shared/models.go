package shared

// PostApprovalStatus is the server-sourced snapshot of which verification
// steps a loan has completed. It is never mutated locally; flows re-fetch it
// after every successful step.
type PostApprovalStatus struct {
	Selfie          bool `json:"selfie"`
	AgreementSetup  bool `json:"agreement_setup"`
	AutoPay         bool `json:"auto_pay"`
	AadhaarVerified bool `json:"aadhaar_verified"`
}

// PostApprovalRequest is the input to PostApprovalWorkflow.
type PostApprovalRequest struct {
	LoanID        string `json:"loanId"`
	UserID        string `json:"userId"`
	ChatSessionID string `json:"chatSessionId"`
	// FallbackURL is the DigiLocker URL carried by the originating chat
	// message, if any. It takes precedence over cached or freshly created URLs.
	FallbackURL string `json:"fallbackUrl"`
}

// PostApprovalProgress is returned by the controller query handler.
type PostApprovalProgress struct {
	CurrentStep string             `json:"currentStep"`
	Status      PostApprovalStatus `json:"status"`
}

// FlowResult is the outcome of a single verification flow. A flow the user
// abandons (popup closed) completes the workflow with Completed=false;
// abandonment is a business outcome, not a workflow failure.
type FlowResult struct {
	Completed bool   `json:"completed"`
	Reason    string `json:"reason"`
}

// ---------------------------------------------------------------------------
// Aadhaar flow

// AadhaarStep identifies the screen inside the Aadhaar popup.
type AadhaarStep string

const (
	StepAadhaar AadhaarStep = "aadhaar"
	StepOtp     AadhaarStep = "otp"
)

// AadhaarVerificationRequest is the input to AadhaarVerificationWorkflow.
type AadhaarVerificationRequest struct {
	LoanID      string `json:"loanId"`
	UserID      string `json:"userId"`
	FallbackURL string `json:"fallbackUrl"`
}

// AadhaarSubmission carries the entered Aadhaar number.
type AadhaarSubmission struct {
	AadhaarNumber string `json:"aadhaarNumber"`
}

// OtpEntry carries the current content of an OTP input field.
type OtpEntry struct {
	Code string `json:"code"`
}

// AadhaarSessionState is returned by the Aadhaar session query. ShowFallback
// and Error are mutually exclusive: a raised fallback always clears the error.
type AadhaarSessionState struct {
	Step           AadhaarStep `json:"step"`
	ShowFallback   bool        `json:"showFallback"`
	Error          string      `json:"error"`
	FallbackURL    string      `json:"fallbackUrl"`
	MobileNumber   string      `json:"mobileNumber"`
	OtpSecondsLeft int         `json:"otpSecondsLeft"`
}

// UserBasicDetail is the identity service's basic-detail lookup result.
type UserBasicDetail struct {
	MobileNumber string `json:"mobileNumber"`
	Name         string `json:"name"`
}

// ---------------------------------------------------------------------------
// Face flow

// FaceStep identifies the screen inside the face verification popup.
type FaceStep string

const (
	StepInstructions FaceStep = "instructions"
	StepCamera       FaceStep = "camera"
	StepPreview      FaceStep = "preview"
	StepVerification FaceStep = "verification"
)

// FaceVerificationRequest is the input to FaceVerificationWorkflow.
type FaceVerificationRequest struct {
	LoanID string `json:"loanId"`
	UserID string `json:"userId"`
}

// FaceSessionState is returned by the face session query.
type FaceSessionState struct {
	Step     FaceStep `json:"step"`
	Error    string   `json:"error"`
	HasPhoto bool     `json:"hasPhoto"`
	Verified bool     `json:"verified"`
}

// CameraStream is the handle for an acquired camera stream. The workflow owns
// it exclusively and must release it on every exit path.
type CameraStream struct {
	HandleID    string `json:"handleId"`
	FacingFront bool   `json:"facingFront"`
}

// CapturedFrame is a single captured photo.
type CapturedFrame struct {
	JPEGBase64 string `json:"jpegBase64"`
	Bytes      int    `json:"bytes"`
}

// LivelinessResult is the liveness check outcome.
type LivelinessResult struct {
	Live  bool    `json:"live"`
	Score float64 `json:"score"`
}

// FaceMatchResult is the face match outcome.
type FaceMatchResult struct {
	Verified bool `json:"verified"`
}

// ---------------------------------------------------------------------------
// EMI auto-pay flow

// MandateScreen identifies the screen inside the auto-pay popup. Screens are
// ordered; transitions move exactly one position forward.
type MandateScreen string

const (
	ScreenIntro          MandateScreen = "intro"
	ScreenBankDetails    MandateScreen = "bankDetails"
	ScreenConfirmation   MandateScreen = "confirmation"
	ScreenPaymentMethods MandateScreen = "paymentMethods"
)

// MandateScreenOrder is the enforced walk through the auto-pay popup.
var MandateScreenOrder = []MandateScreen{
	ScreenIntro, ScreenBankDetails, ScreenConfirmation, ScreenPaymentMethods,
}

// MandateSetupRequest is the input to EmiAutoPayWorkflow.
type MandateSetupRequest struct {
	LoanID string `json:"loanId"`
	UserID string `json:"userId"`
}

// IFSCDetails is the bank-lookup result for a resolved IFSC code.
type IFSCDetails struct {
	Bank    string `json:"bank"`
	Branch  string `json:"branch"`
	Address string `json:"address"`
}

// IFSCEntry carries the current content of the routing-code field.
type IFSCEntry struct {
	Code string `json:"code"`
}

// BankDetailsSubmission carries the bank-details form.
type BankDetailsSubmission struct {
	AccountNumber        string `json:"accountNumber"`
	ConfirmAccountNumber string `json:"confirmAccountNumber"`
	HolderName           string `json:"holderName"`
	IFSC                 string `json:"ifsc"`
}

// AccountInfo is a previously saved bank account, used only to pre-fill the
// bank-details form. It never advances a screen.
type AccountInfo struct {
	Exists        bool   `json:"exists"`
	AccountNumber string `json:"accountNumber"`
	HolderName    string `json:"holderName"`
	IFSC          string `json:"ifsc"`
}

// PaymentMethodChoice selects the mandate authorization channel.
type PaymentMethodChoice struct {
	Method string `json:"method"` // "UPI" or "NACH"
}

// MandateBankInfo describes which mandate channels the user's bank supports.
type MandateBankInfo struct {
	EsignMandate       bool     `json:"esignMandate"`
	PhysicalMandate    bool     `json:"physicalMandate"`
	AllowedAuthSubType []string `json:"allowedAuthSubType"`
}

// MandateRequestInfo is the server-side mandate creation result.
type MandateRequestInfo struct {
	MandateID         string `json:"mandateId"`
	PhoneNumber       string `json:"phoneNumber"`
	AuthenticationURL string `json:"authenticationUrl"`
}

// SignMandateRequest drives the e-sign adapter for a created mandate.
type SignMandateRequest struct {
	MandateID         string `json:"mandateId"`
	PhoneNumber       string `json:"phoneNumber"`
	Token             string `json:"token"`
	AuthenticationURL string `json:"authenticationUrl"`
}

// SignMandateResult reports how signing was initiated. UsedFallback means the
// SDK was unavailable and the authentication URL was opened instead, which
// the flow treats as completion.
type SignMandateResult struct {
	UsedFallback      bool   `json:"usedFallback"`
	AuthenticationURL string `json:"authenticationUrl"`
}

// RedirectReturn carries the query parameters of the e-sign redirect return.
type RedirectReturn struct {
	TransactionID string `json:"transactionId"`
	DocumentID    string `json:"documentId"`
	ErrorCode     string `json:"errorCode"`
}

// MandateSessionState is returned by the mandate session query.
type MandateSessionState struct {
	Screen         MandateScreen `json:"screen"`
	Error          string        `json:"error"`
	AccountNumber  string        `json:"accountNumber"`
	HolderName     string        `json:"holderName"`
	IFSC           string        `json:"ifsc"`
	IFSCError      string        `json:"ifscError"`
	IFSCDetails    *IFSCDetails  `json:"ifscDetails"`
	AllowedMethods []string      `json:"allowedMethods"`
	SelectedMethod string        `json:"selectedMethod"`
}

// ---------------------------------------------------------------------------
// Agreement flow

// AgreementStep identifies the screen inside the agreement popup.
type AgreementStep string

const (
	StepLanguage  AgreementStep = "language"
	StepDocuments AgreementStep = "documents"
	StepConsent   AgreementStep = "consent"
	StepSignOtp   AgreementStep = "otp"
	StepSuccess   AgreementStep = "success"
)

// AgreementSigningRequest is the input to AgreementSigningWorkflow.
type AgreementSigningRequest struct {
	LoanID string `json:"loanId"`
	UserID string `json:"userId"`
}

// LanguageSelection carries the chosen agreement language.
type LanguageSelection struct {
	Language string `json:"language"`
}

// AgreementURLs are the generated document locations.
type AgreementURLs struct {
	AgreementURL string `json:"agreementUrl"`
	KfsURL       string `json:"kfsUrl"`
}

// Coordinates is a captured device geolocation.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ConsentChange carries the consent checkbox state.
type ConsentChange struct {
	Checked bool `json:"checked"`
}

// AgreementSessionState is returned by the agreement session query.
// ConsentChecked mirrors the server-recorded consent; it is never set unless
// the record call succeeded.
type AgreementSessionState struct {
	Step           AgreementStep  `json:"step"`
	Error          string         `json:"error"`
	Language       string         `json:"language"`
	URLs           *AgreementURLs `json:"urls"`
	HasLocation    bool           `json:"hasLocation"`
	LocationError  string         `json:"locationError"`
	ConsentChecked bool           `json:"consentChecked"`
}

// ---------------------------------------------------------------------------
// Plan selection poller

// PlanIframeOpened signals the controller that the plan-selection iframe is
// showing; it starts the bounded status poller.
type PlanIframeOpened struct {
	ChatSessionID string `json:"chatSessionId"`
}

// PlanPollRequest is the input to PlanSelectionPollerWorkflow.
type PlanPollRequest struct {
	LoanID        string `json:"loanId"`
	UserID        string `json:"userId"`
	ChatSessionID string `json:"chatSessionId"`
}

// PlanPollResult reports how a polling session ended. SummarySent is true for
// at most one send per session regardless of how ticks interleave.
type PlanPollResult struct {
	Completed   bool `json:"completed"`
	Attempts    int  `json:"attempts"`
	SummarySent bool `json:"summarySent"`
}

// AssignedProduct is the poll target; a non-empty ProductID is the completion
// signal for the plan-selection iframe.
type AssignedProduct struct {
	ProductID string `json:"productId"`
}

// EmiPlan is the selected payment plan, summarized into the chat thread.
type EmiPlan struct {
	ProductID          string  `json:"productId"`
	PlanName           string  `json:"planName"`
	TenureMonths       int     `json:"tenureMonths"`
	MonthlyInstallment float64 `json:"monthlyInstallment"`
	TotalAmount        float64 `json:"totalAmount"`
}
