package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"post-approval-verification/device"
	"post-approval-verification/shared"
)

// AcquireCamera acquires the patient-side camera, preferring the front-facing
// one and falling back to any available camera. Acquisition failures are
// non-retryable; the error message is the classified user-facing text.
func (a *Activities) AcquireCamera(ctx context.Context, userID string) (shared.CameraStream, error) {
	logger := activity.GetLogger(ctx)

	stream, err := a.Camera.Acquire(ctx, true)
	if err != nil {
		logger.Info("Front camera unavailable, trying any camera", "userId", userID, "error", err)
		stream, err = a.Camera.Acquire(ctx, false)
	}
	if err != nil {
		logger.Error("Camera acquisition failed", "userId", userID, "error", err)
		return shared.CameraStream{}, temporal.NewNonRetryableApplicationError(
			device.ClassifyCameraError(err),
			shared.ErrTypeCameraUnavailable,
			err,
		)
	}

	logger.Info("Camera acquired", "userId", userID, "handleId", stream.HandleID, "facingFront", stream.FacingFront)
	return stream, nil
}

// CaptureFrame captures one frame from the acquired stream and rejects
// implausibly small or non-JPEG payloads as corrupt.
func (a *Activities) CaptureFrame(ctx context.Context, handleID string) (shared.CapturedFrame, error) {
	frame, err := a.Camera.Capture(ctx, handleID)
	if err != nil {
		return shared.CapturedFrame{}, err
	}

	if err := device.CheckFrame(frame); err != nil {
		return shared.CapturedFrame{}, temporal.NewNonRetryableApplicationError(
			"We couldn't capture a clear photo. Please try again.",
			shared.ErrTypeCorruptFrame,
			err,
		)
	}
	return frame, nil
}

// ReleaseCamera stops the acquired stream. Flows call it on every exit path;
// it must stay idempotent-tolerant at the workflow level, so failure to
// release an already-closed stream is logged, not propagated.
func (a *Activities) ReleaseCamera(ctx context.Context, handleID string) error {
	logger := activity.GetLogger(ctx)

	if err := a.Camera.Release(ctx, handleID); err != nil {
		logger.Warn("Camera release reported an error", "handleId", handleID, "error", err)
	}
	return nil
}

// SavePhotograph uploads the captured photo.
func (a *Activities) SavePhotograph(ctx context.Context, userID, jpegBase64 string) error {
	return a.Face.SavePhotograph(ctx, userID, jpegBase64)
}

// CheckLiveliness runs the liveness check on the saved photograph.
func (a *Activities) CheckLiveliness(ctx context.Context, userID string) (shared.LivelinessResult, error) {
	return a.Face.CheckLiveliness(ctx, userID)
}

// CheckFaceMatch runs the face match against the user's identity document.
func (a *Activities) CheckFaceMatch(ctx context.Context, userID string) (shared.FaceMatchResult, error) {
	return a.Face.CheckFaceMatch(ctx, userID)
}
