package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"

	"post-approval-verification/shared"
	"post-approval-verification/workflows"
)

// workflowClient is the slice of client.Client the gateway needs; tests
// substitute a fake.
type workflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
	QueryWorkflow(ctx context.Context, workflowID, runID, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

// flowSignals is the allowlist of signals the web client may deliver to each
// flow. Anything else is rejected before it reaches Temporal.
var flowSignals = map[string]map[string]bool{
	"aadhaar": {
		shared.SignalAadhaarSubmitted: true,
		shared.SignalOtpChanged:       true,
		shared.SignalResendOtp:        true,
		shared.SignalTryAgain:         true,
		shared.SignalPopupClosed:      true,
	},
	"face": {
		shared.SignalStartCamera:  true,
		shared.SignalCaptureFrame: true,
		shared.SignalRetakePhoto:  true,
		shared.SignalConfirmPhoto: true,
		shared.SignalPopupClosed:  true,
	},
	"autopay": {
		shared.SignalProceed:              true,
		shared.SignalIfscChanged:          true,
		shared.SignalBankDetailsSubmitted: true,
		shared.SignalPaymentMethodChosen:  true,
		shared.SignalPopupClosed:          true,
	},
	"agreement": {
		shared.SignalLanguageSelected: true,
		shared.SignalRetryLocation:    true,
		shared.SignalProceed:          true,
		shared.SignalConsentChecked:   true,
		shared.SignalAgreementOtp:     true,
		shared.SignalPopupClosed:      true,
	},
	"plan-poller": {
		shared.SignalIframeClosed: true,
	},
}

// flowQueries maps each flow to its session query.
var flowQueries = map[string]string{
	"aadhaar":   shared.QueryAadhaarSession,
	"face":      shared.QueryFaceSession,
	"autopay":   shared.QueryMandateSession,
	"agreement": shared.QueryAgreementSession,
}

type server struct {
	temporal workflowClient
	logger   *slog.Logger

	mu               sync.Mutex
	handledRedirects map[string]bool
}

func newServer(temporal workflowClient, logger *slog.Logger) *server {
	return &server{
		temporal:         temporal,
		logger:           logger,
		handledRedirects: map[string]bool{},
	}
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/loans/{loanId}/post-approval/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/loans/{loanId}/post-approval/progress", s.handleProgress).Methods(http.MethodGet)
	r.HandleFunc("/loans/{loanId}/post-approval/iframe-opened", s.handleIframeOpened).Methods(http.MethodPost)
	r.HandleFunc("/flows/{flow}/{loanId}/signals/{signal}", s.handleSignal).Methods(http.MethodPost)
	r.HandleFunc("/flows/{flow}/{loanId}/session", s.handleSession).Methods(http.MethodGet)
	r.HandleFunc("/mandate/redirect", s.handleMandateRedirect).Methods(http.MethodGet)
	return r
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func controllerWorkflowID(loanID string) string {
	return fmt.Sprintf("post-approval-%s", loanID)
}

func flowWorkflowID(flow, loanID string) string {
	return fmt.Sprintf("%s-%s", flow, loanID)
}

// handleStart begins the post-approval run for a loan. The workflow ID is
// derived from the loan, so a second start while one is running is rejected
// by Temporal rather than producing a duplicate.
func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var body struct {
		UserID        string `json:"userId"`
		ChatSessionID string `json:"chatSessionId"`
		FallbackURL   string `json:"fallbackUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(),
		client.StartWorkflowOptions{
			ID:        controllerWorkflowID(loanID),
			TaskQueue: shared.VerificationWorkflowTaskQueue,
		},
		workflows.PostApprovalWorkflow,
		shared.PostApprovalRequest{
			LoanID:        loanID,
			UserID:        body.UserID,
			ChatSessionID: body.ChatSessionID,
			FallbackURL:   body.FallbackURL,
		},
	)
	if err != nil {
		s.logger.Error("failed to start post-approval workflow", "loanId", loanID, "error", err)
		s.writeError(w, http.StatusConflict, "could not start verification")
		return
	}

	s.logger.Info("post-approval workflow started", "loanId", loanID, "runId", we.GetRunID())
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"workflowId": we.GetID(),
		"runId":      we.GetRunID(),
	})
}

func (s *server) handleProgress(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	resp, err := s.temporal.QueryWorkflow(r.Context(), controllerWorkflowID(loanID), "", shared.QueryPostApprovalProgress)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "no verification in progress")
		return
	}
	var progress shared.PostApprovalProgress
	if err := resp.Get(&progress); err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not decode progress")
		return
	}
	s.writeJSON(w, http.StatusOK, progress)
}

func (s *server) handleIframeOpened(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var opened shared.PlanIframeOpened
	if err := json.NewDecoder(r.Body).Decode(&opened); err != nil && err != io.EOF {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.temporal.SignalWorkflow(r.Context(), controllerWorkflowID(loanID), "", shared.SignalPlanIframeOpened, opened)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "no verification in progress")
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "signaled"})
}

// handleSignal forwards an allowlisted UI event to the flow's workflow. The
// request body is passed through as the signal payload.
func (s *server) handleSignal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	flow, loanID, signal := vars["flow"], vars["loanId"], vars["signal"]

	allowed, ok := flowSignals[flow]
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown flow")
		return
	}
	if !allowed[signal] {
		s.writeError(w, http.StatusBadRequest, "signal not allowed for this flow")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	var arg interface{}
	if len(payload) > 0 {
		arg = json.RawMessage(payload)
	}

	if err := s.temporal.SignalWorkflow(r.Context(), flowWorkflowID(flow, loanID), "", signal, arg); err != nil {
		s.logger.Warn("signal delivery failed", "flow", flow, "loanId", loanID, "signal", signal, "error", err)
		s.writeError(w, http.StatusNotFound, "flow is not running")
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "signaled"})
}

func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	flow, loanID := vars["flow"], vars["loanId"]

	query, ok := flowQueries[flow]
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown flow")
		return
	}

	resp, err := s.temporal.QueryWorkflow(r.Context(), flowWorkflowID(flow, loanID), "", query)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "flow is not running")
		return
	}
	var state json.RawMessage
	if err := resp.Get(&state); err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not decode session state")
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// handleMandateRedirect is the e-sign return URL. The signing page bounces
// back with the mandate outcome in query parameters; those are forwarded to
// the waiting flow exactly once and then stripped, so a reload of the landing
// page cannot replay the outcome.
func (s *server) handleMandateRedirect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loanID := q.Get("loan_id")
	if loanID == "" {
		s.writeError(w, http.StatusBadRequest, "missing loan_id")
		return
	}

	ret := shared.RedirectReturn{
		TransactionID: q.Get("txn_id"),
		DocumentID:    q.Get("digio_doc_id"),
		ErrorCode:     q.Get("error_code"),
	}

	if ret.TransactionID == "" && ret.DocumentID == "" && ret.ErrorCode == "" {
		// Stripped landing page (or a direct visit); nothing to deliver.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><p>You can close this window and return to the application.</p></body></html>")
		return
	}

	key := loanID + "|" + ret.TransactionID + "|" + ret.DocumentID + "|" + ret.ErrorCode
	s.mu.Lock()
	seen := s.handledRedirects[key]
	if !seen {
		s.handledRedirects[key] = true
	}
	s.mu.Unlock()

	if !seen {
		err := s.temporal.SignalWorkflow(r.Context(), flowWorkflowID("autopay", loanID), "", shared.SignalRedirectReturn, ret)
		if err != nil {
			s.logger.Warn("redirect signal delivery failed", "loanId", loanID, "error", err)
		}
	}

	http.Redirect(w, r, r.URL.Path+"?loan_id="+loanID, http.StatusSeeOther)
}
