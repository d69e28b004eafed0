package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.temporal.io/sdk/testsuite"

	"post-approval-verification/shared"
	"post-approval-verification/workflows"
)

func pollRequest() shared.PlanPollRequest {
	return shared.PlanPollRequest{LoanID: "LOAN-001", UserID: "USER-001", ChatSessionID: "CHAT-001"}
}

func TestPlanPoller_SendsSummaryOnceOnCompletion(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	// Two empty polls, then the product shows up.
	env.OnActivity(a.GetAssignedProduct, mock.Anything, "USER-001").Return(shared.AssignedProduct{}, nil).Times(2)
	env.OnActivity(a.GetAssignedProduct, mock.Anything, "USER-001").Return(shared.AssignedProduct{ProductID: "PROD-7"}, nil)
	env.OnActivity(a.GetEmiPlan, mock.Anything, "LOAN-001", "USER-001", "PROD-7").Return(
		shared.EmiPlan{ProductID: "PROD-7", PlanName: "6-month EMI", TenureMonths: 6, MonthlyInstallment: 2500, TotalAmount: 15000}, nil)
	env.OnActivity(a.FormatPlanSummary, mock.Anything, mock.Anything).Return(
		"Payment plan selected: 6-month EMI — 6 monthly installments of ₹2500.00 (total ₹15000.00).", nil)
	env.OnActivity(a.SendChatMessage, mock.Anything, "CHAT-001", mock.Anything).Return(nil)

	env.ExecuteWorkflow(workflows.PlanSelectionPollerWorkflow, pollRequest())

	assert.True(t, env.IsWorkflowCompleted())
	assert.NoError(t, env.GetWorkflowError())

	var result shared.PlanPollResult
	assert.NoError(t, env.GetWorkflowResult(&result))
	assert.True(t, result.Completed)
	assert.True(t, result.SummarySent)
	assert.Equal(t, 3, result.Attempts)
	env.AssertNumberOfCalls(t, "SendChatMessage", 1)
}

func TestPlanPoller_ExhaustsAttemptCapSilently(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.GetAssignedProduct, mock.Anything, mock.Anything).Return(shared.AssignedProduct{}, nil)

	env.ExecuteWorkflow(workflows.PlanSelectionPollerWorkflow, pollRequest())

	assert.True(t, env.IsWorkflowCompleted())
	assert.NoError(t, env.GetWorkflowError())

	var result shared.PlanPollResult
	assert.NoError(t, env.GetWorkflowResult(&result))
	assert.False(t, result.Completed)
	assert.False(t, result.SummarySent)
	assert.Equal(t, shared.MaxPlanPollAttempts, result.Attempts)
	env.AssertNumberOfCalls(t, "SendChatMessage", 0)
}

func TestPlanPoller_IframeClosedStopsEarly(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.GetAssignedProduct, mock.Anything, mock.Anything).Return(shared.AssignedProduct{}, nil)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalIframeClosed, nil)
	}, time.Second*5)

	env.ExecuteWorkflow(workflows.PlanSelectionPollerWorkflow, pollRequest())

	assert.True(t, env.IsWorkflowCompleted())
	assert.NoError(t, env.GetWorkflowError())

	var result shared.PlanPollResult
	assert.NoError(t, env.GetWorkflowResult(&result))
	assert.False(t, result.Completed)
	assert.Less(t, result.Attempts, shared.MaxPlanPollAttempts)
	env.AssertNumberOfCalls(t, "SendChatMessage", 0)
}

func TestPlanPoller_FailedTicksAreJustMisses(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.GetAssignedProduct, mock.Anything, mock.Anything).Return(shared.AssignedProduct{}, assert.AnError).Times(3)
	env.OnActivity(a.GetAssignedProduct, mock.Anything, mock.Anything).Return(shared.AssignedProduct{ProductID: "PROD-7"}, nil)
	env.OnActivity(a.GetEmiPlan, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(
		shared.EmiPlan{ProductID: "PROD-7", PlanName: "6-month EMI"}, nil)
	env.OnActivity(a.FormatPlanSummary, mock.Anything, mock.Anything).Return("Payment plan selected: 6-month EMI.", nil)
	env.OnActivity(a.SendChatMessage, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(workflows.PlanSelectionPollerWorkflow, pollRequest())

	assert.True(t, env.IsWorkflowCompleted())
	assert.NoError(t, env.GetWorkflowError())

	var result shared.PlanPollResult
	assert.NoError(t, env.GetWorkflowResult(&result))
	assert.True(t, result.Completed)
	assert.Equal(t, 4, result.Attempts)
}

func TestPlanPoller_PlanFetchFailureSkipsSummary(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.GetAssignedProduct, mock.Anything, mock.Anything).Return(shared.AssignedProduct{ProductID: "PROD-7"}, nil)
	env.OnActivity(a.GetEmiPlan, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(
		shared.EmiPlan{}, assert.AnError)

	env.ExecuteWorkflow(workflows.PlanSelectionPollerWorkflow, pollRequest())

	assert.True(t, env.IsWorkflowCompleted())
	assert.NoError(t, env.GetWorkflowError())

	var result shared.PlanPollResult
	assert.NoError(t, env.GetWorkflowResult(&result))
	assert.True(t, result.Completed, "the poll itself completed even though the summary failed")
	assert.False(t, result.SummarySent)
	env.AssertNumberOfCalls(t, "SendChatMessage", 0)
}

func TestPlanPoller_CreatesChatSessionWhenMissing(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.EnsureChatSession, mock.Anything, "USER-001").Return("CHAT-NEW", nil)
	env.OnActivity(a.GetAssignedProduct, mock.Anything, mock.Anything).Return(shared.AssignedProduct{ProductID: "PROD-7"}, nil)
	env.OnActivity(a.GetEmiPlan, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(
		shared.EmiPlan{ProductID: "PROD-7", PlanName: "6-month EMI"}, nil)
	env.OnActivity(a.FormatPlanSummary, mock.Anything, mock.Anything).Return("Payment plan selected: 6-month EMI.", nil)
	env.OnActivity(a.SendChatMessage, mock.Anything, "CHAT-NEW", mock.Anything).Return(nil)

	req := pollRequest()
	req.ChatSessionID = ""
	env.ExecuteWorkflow(workflows.PlanSelectionPollerWorkflow, req)

	assert.True(t, env.IsWorkflowCompleted())
	var result shared.PlanPollResult
	assert.NoError(t, env.GetWorkflowResult(&result))
	assert.True(t, result.SummarySent)
	env.AssertNumberOfCalls(t, "EnsureChatSession", 1)
}
