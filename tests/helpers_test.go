package tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"post-approval-verification/activities"
	"post-approval-verification/shared"
)

func registerMockActivities(env *testsuite.TestWorkflowEnvironment) *activities.Activities {
	a := &activities.Activities{}
	env.RegisterActivity(a)
	return a
}

func queryAadhaarSession(t *testing.T, env *testsuite.TestWorkflowEnvironment) shared.AadhaarSessionState {
	t.Helper()
	v, err := env.QueryWorkflow(shared.QueryAadhaarSession)
	require.NoError(t, err)
	var state shared.AadhaarSessionState
	require.NoError(t, v.Get(&state))
	return state
}

func queryFaceSession(t *testing.T, env *testsuite.TestWorkflowEnvironment) shared.FaceSessionState {
	t.Helper()
	v, err := env.QueryWorkflow(shared.QueryFaceSession)
	require.NoError(t, err)
	var state shared.FaceSessionState
	require.NoError(t, v.Get(&state))
	return state
}

func queryMandateSession(t *testing.T, env *testsuite.TestWorkflowEnvironment) shared.MandateSessionState {
	t.Helper()
	v, err := env.QueryWorkflow(shared.QueryMandateSession)
	require.NoError(t, err)
	var state shared.MandateSessionState
	require.NoError(t, v.Get(&state))
	return state
}

func queryAgreementSession(t *testing.T, env *testsuite.TestWorkflowEnvironment) shared.AgreementSessionState {
	t.Helper()
	v, err := env.QueryWorkflow(shared.QueryAgreementSession)
	require.NoError(t, err)
	var state shared.AgreementSessionState
	require.NoError(t, v.Get(&state))
	return state
}
