package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"

	"post-approval-verification/shared"
)

type sentSignal struct {
	workflowID string
	name       string
	arg        interface{}
}

type fakeTemporal struct {
	signals   []sentSignal
	signalErr error
	queryFn   func(workflowID, queryType string) (interface{}, error)
}

func (f *fakeTemporal) ExecuteWorkflow(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
	return fakeRun{id: options.ID}, nil
}

func (f *fakeTemporal) SignalWorkflow(_ context.Context, workflowID, _, signalName string, arg interface{}) error {
	if f.signalErr != nil {
		return f.signalErr
	}
	f.signals = append(f.signals, sentSignal{workflowID: workflowID, name: signalName, arg: arg})
	return nil
}

func (f *fakeTemporal) QueryWorkflow(_ context.Context, workflowID, _, queryType string, _ ...interface{}) (converter.EncodedValue, error) {
	if f.queryFn == nil {
		return nil, context.DeadlineExceeded
	}
	v, err := f.queryFn(workflowID, queryType)
	if err != nil {
		return nil, err
	}
	return encodedValue{v: v}, nil
}

type fakeRun struct{ id string }

func (r fakeRun) GetID() string    { return r.id }
func (r fakeRun) GetRunID() string { return "run-1" }
func (r fakeRun) Get(context.Context, interface{}) error {
	return nil
}
func (r fakeRun) GetWithOptions(context.Context, interface{}, client.WorkflowRunGetOptions) error {
	return nil
}

type encodedValue struct{ v interface{} }

func (e encodedValue) HasValue() bool { return e.v != nil }
func (e encodedValue) Get(valuePtr interface{}) error {
	data, err := json.Marshal(e.v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, valuePtr)
}

func newTestServer(t *testing.T, temporal *fakeTemporal) *httptest.Server {
	t.Helper()
	s := newServer(temporal, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestSignalForwardedToFlowWorkflow(t *testing.T) {
	temporal := &fakeTemporal{}
	ts := newTestServer(t, temporal)

	body := bytes.NewBufferString(`{"aadhaarNumber":"123456789012"}`)
	resp, err := http.Post(ts.URL+"/flows/aadhaar/LOAN-9/signals/"+shared.SignalAadhaarSubmitted, "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, temporal.signals, 1)
	assert.Equal(t, "aadhaar-LOAN-9", temporal.signals[0].workflowID)
	assert.Equal(t, shared.SignalAadhaarSubmitted, temporal.signals[0].name)
}

func TestSignalNotInFlowAllowlistRejected(t *testing.T) {
	temporal := &fakeTemporal{}
	ts := newTestServer(t, temporal)

	// A face-flow signal aimed at the aadhaar flow never reaches Temporal.
	resp, err := http.Post(ts.URL+"/flows/aadhaar/LOAN-9/signals/"+shared.SignalCaptureFrame, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, temporal.signals)
}

func TestUnknownFlowRejected(t *testing.T) {
	temporal := &fakeTemporal{}
	ts := newTestServer(t, temporal)

	resp, err := http.Post(ts.URL+"/flows/mystery/LOAN-9/signals/"+shared.SignalProceed, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, temporal.signals)
}

func TestMandateRedirectSignalsOnceAndStripsParams(t *testing.T) {
	temporal := &fakeTemporal{}
	ts := newTestServer(t, temporal)

	httpClient := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	url := ts.URL + "/mandate/redirect?loan_id=LOAN-9&digio_doc_id=DID123&txn_id=TXN456"

	resp, err := httpClient.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/mandate/redirect?loan_id=LOAN-9", resp.Header.Get("Location"))

	// A reload of the same outcome URL must not replay the signal.
	resp, err = httpClient.Get(url)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, temporal.signals, 1)
	assert.Equal(t, "autopay-LOAN-9", temporal.signals[0].workflowID)
	assert.Equal(t, shared.SignalRedirectReturn, temporal.signals[0].name)
	ret, ok := temporal.signals[0].arg.(shared.RedirectReturn)
	require.True(t, ok)
	assert.Equal(t, "TXN456", ret.TransactionID)
	assert.Equal(t, "DID123", ret.DocumentID)
	assert.Empty(t, ret.ErrorCode)
}

func TestMandateRedirectLandingPageWithoutOutcome(t *testing.T) {
	temporal := &fakeTemporal{}
	ts := newTestServer(t, temporal)

	resp, err := http.Get(ts.URL + "/mandate/redirect?loan_id=LOAN-9")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, temporal.signals)
}

func TestSessionQueryRoutesToFlowQuery(t *testing.T) {
	temporal := &fakeTemporal{
		queryFn: func(workflowID, queryType string) (interface{}, error) {
			if workflowID != "agreement-LOAN-9" || queryType != shared.QueryAgreementSession {
				return nil, context.DeadlineExceeded
			}
			return shared.AgreementSessionState{Step: shared.StepConsent, Language: "en"}, nil
		},
	}
	ts := newTestServer(t, temporal)

	resp, err := http.Get(ts.URL + "/flows/agreement/LOAN-9/session")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state shared.AgreementSessionState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, shared.StepConsent, state.Step)
	assert.Equal(t, "en", state.Language)
}

func TestStartReturnsWorkflowIdentity(t *testing.T) {
	temporal := &fakeTemporal{}
	ts := newTestServer(t, temporal)

	resp, err := http.Post(ts.URL+"/loans/LOAN-9/post-approval/start", "application/json",
		bytes.NewBufferString(`{"userId":"USER-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "post-approval-LOAN-9", out["workflowId"])
}
