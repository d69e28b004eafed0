package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"post-approval-verification/shared"
	"post-approval-verification/workflows"
)

func faceRequest() shared.FaceVerificationRequest {
	return shared.FaceVerificationRequest{LoanID: "LOAN-001", UserID: "USER-001"}
}

func passingFaceMocks(env *testsuite.TestWorkflowEnvironment) {
	a := registerMockActivities(env)
	env.OnActivity(a.AcquireCamera, mock.Anything, "USER-001").Return(
		shared.CameraStream{HandleID: "cam-1", FacingFront: true}, nil)
	env.OnActivity(a.CaptureFrame, mock.Anything, "cam-1").Return(
		shared.CapturedFrame{JPEGBase64: "ZGF0YQ==", Bytes: 4096}, nil)
	env.OnActivity(a.ReleaseCamera, mock.Anything, "cam-1").Return(nil)
	env.OnActivity(a.SavePhotograph, mock.Anything, "USER-001", mock.Anything).Return(nil)
	env.OnActivity(a.CheckLiveliness, mock.Anything, "USER-001").Return(
		shared.LivelinessResult{Live: true, Score: 0.97}, nil)
	env.OnActivity(a.CheckFaceMatch, mock.Anything, "USER-001").Return(
		shared.FaceMatchResult{Verified: true}, nil)
}

func TestFaceWorkflow_HappyPath(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	passingFaceMocks(env)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalStartCamera, nil)
	}, time.Millisecond*100)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalCaptureFrame, nil)
	}, time.Second)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalConfirmPhoto, nil)
	}, time.Second*2)

	env.ExecuteWorkflow(workflows.FaceVerificationWorkflow, faceRequest())

	assert.True(t, env.IsWorkflowCompleted())
	assert.NoError(t, env.GetWorkflowError())

	var result shared.FlowResult
	assert.NoError(t, env.GetWorkflowResult(&result))
	assert.True(t, result.Completed)
	assert.Equal(t, "face-verified", result.Reason)

	// The stream acquired for the capture was released exactly once.
	env.AssertNumberOfCalls(t, "AcquireCamera", 1)
	env.AssertNumberOfCalls(t, "ReleaseCamera", 1)
}

func TestFaceWorkflow_ScoreAtThresholdIsRejected(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.AcquireCamera, mock.Anything, mock.Anything).Return(
		shared.CameraStream{HandleID: "cam-1"}, nil)
	env.OnActivity(a.CaptureFrame, mock.Anything, mock.Anything).Return(
		shared.CapturedFrame{JPEGBase64: "ZGF0YQ==", Bytes: 4096}, nil)
	env.OnActivity(a.ReleaseCamera, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(a.SavePhotograph, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	// Exactly at the threshold: the comparison is strict, so this fails.
	env.OnActivity(a.CheckLiveliness, mock.Anything, mock.Anything).Return(
		shared.LivelinessResult{Live: true, Score: 0.90}, nil)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalStartCamera, nil)
	}, time.Millisecond*100)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalCaptureFrame, nil)
	}, time.Second)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalConfirmPhoto, nil)
	}, time.Second*2)
	env.RegisterDelayedCallback(func() {
		state := queryFaceSession(t, env)
		assert.Equal(t, shared.StepPreview, state.Step)
		assert.NotEmpty(t, state.Error)
		assert.False(t, state.Verified)
	}, time.Second*3)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalPopupClosed, nil)
	}, time.Second*4)

	env.ExecuteWorkflow(workflows.FaceVerificationWorkflow, faceRequest())

	assert.True(t, env.IsWorkflowCompleted())
	var result shared.FlowResult
	assert.NoError(t, env.GetWorkflowResult(&result))
	assert.False(t, result.Completed)

	// The match check never runs after a failed liveliness check.
	env.AssertNumberOfCalls(t, "CheckFaceMatch", 0)
}

func TestFaceWorkflow_RetakeReleasesEveryAcquiredStream(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.AcquireCamera, mock.Anything, mock.Anything).Return(
		shared.CameraStream{HandleID: "cam-1"}, nil)
	env.OnActivity(a.CaptureFrame, mock.Anything, mock.Anything).Return(
		shared.CapturedFrame{JPEGBase64: "ZGF0YQ==", Bytes: 4096}, nil)
	env.OnActivity(a.ReleaseCamera, mock.Anything, mock.Anything).Return(nil)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalStartCamera, nil)
	}, time.Millisecond*100)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalCaptureFrame, nil)
	}, time.Second)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalRetakePhoto, nil)
	}, time.Second*2)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalCaptureFrame, nil)
	}, time.Second*3)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalPopupClosed, nil)
	}, time.Second*4)

	env.ExecuteWorkflow(workflows.FaceVerificationWorkflow, faceRequest())

	assert.True(t, env.IsWorkflowCompleted())
	env.AssertNumberOfCalls(t, "AcquireCamera", 2)
	env.AssertNumberOfCalls(t, "ReleaseCamera", 2)
}

func TestFaceWorkflow_CloseReleasesOpenStream(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.AcquireCamera, mock.Anything, mock.Anything).Return(
		shared.CameraStream{HandleID: "cam-1"}, nil)
	env.OnActivity(a.ReleaseCamera, mock.Anything, "cam-1").Return(nil)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalStartCamera, nil)
	}, time.Millisecond*100)
	// Closing the popup mid-stream must still stop the camera.
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalPopupClosed, nil)
	}, time.Second)

	env.ExecuteWorkflow(workflows.FaceVerificationWorkflow, faceRequest())

	assert.True(t, env.IsWorkflowCompleted())
	env.AssertNumberOfCalls(t, "AcquireCamera", 1)
	env.AssertNumberOfCalls(t, "ReleaseCamera", 1)
}

func TestFaceWorkflow_CameraDeniedStaysOnInstructions(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.AcquireCamera, mock.Anything, mock.Anything).Return(
		shared.CameraStream{},
		temporal.NewNonRetryableApplicationError(
			"Camera access was denied. Please allow camera access in your browser settings and try again.",
			shared.ErrTypeCameraUnavailable, assert.AnError))

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalStartCamera, nil)
	}, time.Millisecond*100)
	env.RegisterDelayedCallback(func() {
		state := queryFaceSession(t, env)
		assert.Equal(t, shared.StepInstructions, state.Step)
		assert.Contains(t, state.Error, "Camera access was denied")
	}, time.Second)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalPopupClosed, nil)
	}, time.Second*2)

	env.ExecuteWorkflow(workflows.FaceVerificationWorkflow, faceRequest())

	assert.True(t, env.IsWorkflowCompleted())
	env.AssertNumberOfCalls(t, "ReleaseCamera", 0)
}

func TestFaceWorkflow_CorruptFrameStaysOnCamera(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	a := registerMockActivities(env)

	env.OnActivity(a.AcquireCamera, mock.Anything, mock.Anything).Return(
		shared.CameraStream{HandleID: "cam-1"}, nil)
	env.OnActivity(a.CaptureFrame, mock.Anything, mock.Anything).Return(
		shared.CapturedFrame{},
		temporal.NewNonRetryableApplicationError(
			"We couldn't capture a clear photo. Please try again.",
			shared.ErrTypeCorruptFrame, assert.AnError))
	env.OnActivity(a.ReleaseCamera, mock.Anything, "cam-1").Return(nil)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalStartCamera, nil)
	}, time.Millisecond*100)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalCaptureFrame, nil)
	}, time.Second)
	env.RegisterDelayedCallback(func() {
		state := queryFaceSession(t, env)
		assert.Equal(t, shared.StepCamera, state.Step, "a failed capture keeps the live camera")
		assert.NotEmpty(t, state.Error)
		assert.False(t, state.HasPhoto)
	}, time.Second*2)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(shared.SignalPopupClosed, nil)
	}, time.Second*3)

	env.ExecuteWorkflow(workflows.FaceVerificationWorkflow, faceRequest())

	assert.True(t, env.IsWorkflowCompleted())
	env.AssertNumberOfCalls(t, "AcquireCamera", 1)
	env.AssertNumberOfCalls(t, "ReleaseCamera", 1)
}
