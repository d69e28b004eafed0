package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"post-approval-verification/shared"
)

// faceFlow holds the selfie popup session. The camera stream handle is an
// exclusively owned resource: it must be released on every exit path, never
// left open across a transition away from the camera screen.
type faceFlow struct {
	state  shared.FaceSessionState
	stream *shared.CameraStream
	photo  shared.CapturedFrame
	done   bool
	result shared.FlowResult

	req    shared.FaceVerificationRequest
	logger log.Logger
	actCtx workflow.Context
}

func newFaceFlow(ctx workflow.Context, req shared.FaceVerificationRequest) (*faceFlow, error) {
	f := &faceFlow{
		state:  shared.FaceSessionState{Step: shared.StepInstructions},
		req:    req,
		logger: workflow.GetLogger(ctx),
	}

	err := workflow.SetQueryHandler(ctx, shared.QueryFaceSession, func() (shared.FaceSessionState, error) {
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

// acquireStream attempts camera acquisition and surfaces the classified
// user-facing message on failure.
func (f *faceFlow) acquireStream(ctx workflow.Context) bool {
	var stream shared.CameraStream
	err := workflow.ExecuteActivity(f.actCtx, a.AcquireCamera, f.req.UserID).Get(ctx, &stream)
	if err != nil {
		f.state.Error = applicationErrorMessage(err, "Could not start the camera. Please try again.")
		return false
	}
	f.stream = &stream
	f.state.Error = ""
	return true
}

// releaseStream stops the owned stream, if any.
func (f *faceFlow) releaseStream(ctx workflow.Context) {
	if f.stream == nil {
		return
	}
	_ = workflow.ExecuteActivity(f.actCtx, a.ReleaseCamera, f.stream.HandleID).Get(ctx, nil)
	f.stream = nil
}

// startCamera moves instructions → camera once acquisition succeeds.
func (f *faceFlow) startCamera(ctx workflow.Context) {
	if f.state.Step != shared.StepInstructions {
		return
	}
	if f.acquireStream(ctx) {
		f.state.Step = shared.StepCamera
	}
}

// capture grabs a frame, releases the stream and moves camera → preview.
// A corrupt frame keeps the stream open so the patient can retry in place.
func (f *faceFlow) capture(ctx workflow.Context) {
	if f.state.Step != shared.StepCamera || f.stream == nil {
		return
	}

	var frame shared.CapturedFrame
	err := workflow.ExecuteActivity(f.actCtx, a.CaptureFrame, f.stream.HandleID).Get(ctx, &frame)
	if err != nil {
		f.state.Error = applicationErrorMessage(err, "We couldn't capture a clear photo. Please try again.")
		return
	}

	f.releaseStream(ctx)
	f.photo = frame
	f.state.HasPhoto = true
	f.state.Error = ""
	f.state.Step = shared.StepPreview
}

// retake discards the preview photo and re-acquires the camera. Acquisition
// failure drops back to instructions with the classified message.
func (f *faceFlow) retake(ctx workflow.Context) {
	if f.state.Step != shared.StepPreview {
		return
	}

	f.photo = shared.CapturedFrame{}
	f.state.HasPhoto = false

	if f.acquireStream(ctx) {
		f.state.Step = shared.StepCamera
	} else {
		f.state.Step = shared.StepInstructions
	}
}

// verify runs the three dependent checks in order: photograph save,
// liveliness, face match. A later call is never attempted after an earlier
// failure. A negative result returns to preview with a retry message; this is
// not the fallback pattern the other flows use.
func (f *faceFlow) verify(ctx workflow.Context) {
	if f.state.Step != shared.StepPreview || !f.state.HasPhoto {
		return
	}

	if err := workflow.ExecuteActivity(f.actCtx, a.SavePhotograph, f.req.UserID, f.photo.JPEGBase64).Get(ctx, nil); err != nil {
		f.state.Error = "We couldn't upload your photo. Please check your connection and try again."
		return
	}

	var liveliness shared.LivelinessResult
	if err := workflow.ExecuteActivity(f.actCtx, a.CheckLiveliness, f.req.UserID).Get(ctx, &liveliness); err != nil {
		f.state.Error = "Verification is temporarily unavailable. Please try again."
		return
	}

	if !liveliness.Live || liveliness.Score <= shared.LivelinessThreshold {
		f.logger.Info("Liveliness below threshold",
			"userId", f.req.UserID, "live", liveliness.Live, "score", liveliness.Score)
		f.state.Error = "We couldn't confirm this is a live photo. Retake it in good lighting with your face centered."
		return
	}

	var match shared.FaceMatchResult
	if err := workflow.ExecuteActivity(f.actCtx, a.CheckFaceMatch, f.req.UserID).Get(ctx, &match); err != nil {
		f.state.Error = "Verification is temporarily unavailable. Please try again."
		return
	}
	if !match.Verified {
		f.logger.Info("Face match failed", "userId", f.req.UserID)
		f.state.Error = "Your photo didn't match your ID document. Remove glasses or face coverings and retake."
		return
	}

	f.state.Error = ""
	f.state.Verified = true
	f.state.Step = shared.StepVerification
}

// FaceVerificationWorkflow runs the selfie/liveness popup: instructions,
// camera, preview, then the verification result. The success screen dwells
// briefly before the popup closes on its own.
func FaceVerificationWorkflow(ctx workflow.Context, req shared.FaceVerificationRequest) (shared.FlowResult, error) {
	f, err := newFaceFlow(ctx, req)
	if err != nil {
		return shared.FlowResult{}, err
	}

	f.logger.Info("Face verification started", "loanId", req.LoanID)

	startCh := workflow.GetSignalChannel(ctx, shared.SignalStartCamera)
	captureCh := workflow.GetSignalChannel(ctx, shared.SignalCaptureFrame)
	retakeCh := workflow.GetSignalChannel(ctx, shared.SignalRetakePhoto)
	confirmCh := workflow.GetSignalChannel(ctx, shared.SignalConfirmPhoto)
	closeCh := workflow.GetSignalChannel(ctx, shared.SignalPopupClosed)

	for !f.done {
		selector := workflow.NewSelector(ctx)

		selector.AddReceive(startCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.startCamera(ctx)
		})
		// The capture signal also carries space-bar presses; anywhere but the
		// camera screen they are ignored.
		selector.AddReceive(captureCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.capture(ctx)
		})
		selector.AddReceive(retakeCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.retake(ctx)
		})
		selector.AddReceive(confirmCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.verify(ctx)
		})
		selector.AddReceive(closeCh, func(ch workflow.ReceiveChannel, _ bool) {
			ch.Receive(ctx, nil)
			f.releaseStream(ctx)
			f.done = true
			f.result = shared.FlowResult{Completed: false, Reason: "popup-closed"}
		})

		selector.Select(ctx)

		if f.state.Step == shared.StepVerification && !f.done {
			// Celebratory dwell, then auto-close.
			_ = workflow.Sleep(ctx, shared.SuccessDwell)
			f.done = true
			f.result = shared.FlowResult{Completed: true, Reason: "face-verified"}
		}
	}

	f.releaseStream(ctx)
	return f.result, nil
}
