// Package device reaches patient-side capture hardware (camera, geolocation)
// through the capture bridge. The bridge relays browser media errors verbatim;
// this package classifies them into the distinct user-facing messages each
// failure mode requires.
package device

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"post-approval-verification/shared"
)

// Browser media error codes relayed by the capture bridge.
const (
	CodePermissionDenied = "NotAllowedError"
	CodeNoDevice         = "NotFoundError"
	CodeUnsupported      = "NotSupportedError"
	CodeDeviceBusy       = "NotReadableError"
	CodePositionDenied   = "PositionPermissionDenied"
	CodePositionFailed   = "PositionUnavailable"
)

// BridgeError is a classified capture-bridge failure.
type BridgeError struct {
	Code string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("capture bridge error: %s", e.Code)
}

// ClassifyCameraError maps an acquisition failure to the message shown to the
// patient. Each acquisition failure mode gets its own message.
func ClassifyCameraError(err error) string {
	var bridgeErr *BridgeError
	if !errors.As(err, &bridgeErr) {
		return "Could not start the camera. Please try again."
	}
	switch bridgeErr.Code {
	case CodePermissionDenied:
		return "Camera access was denied. Please allow camera access and try again."
	case CodeNoDevice:
		return "No camera was found on this device."
	case CodeUnsupported:
		return "This device does not support camera capture."
	case CodeDeviceBusy:
		return "The camera is in use by another application. Close it and try again."
	default:
		return "Could not start the camera. Please try again."
	}
}

// ClassifyLocationError maps a geolocation failure to the message shown to
// the patient.
func ClassifyLocationError(err error) string {
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) && bridgeErr.Code == CodePositionDenied {
		return "Location access was denied. Please allow location access to continue."
	}
	return "Could not determine your location. Please try again."
}

// CheckFrame rejects captures whose encoded payload is implausibly small or
// is not a JPEG; both indicate a corrupt or empty frame.
func CheckFrame(frame shared.CapturedFrame) error {
	raw, err := base64.StdEncoding.DecodeString(frame.JPEGBase64)
	if err != nil {
		return fmt.Errorf("captured frame is not valid base64: %w", err)
	}
	if len(raw) < shared.MinCaptureBytes {
		return fmt.Errorf("captured frame too small (%d bytes), treating as corrupt", len(raw))
	}
	if len(raw) < 2 || raw[0] != 0xFF || raw[1] != 0xD8 {
		return errors.New("captured frame is not a JPEG")
	}
	return nil
}

// Camera is the patient-side camera. The stream handle returned by Acquire is
// exclusively owned by the caller and must be released on every exit path.
type Camera interface {
	Acquire(ctx context.Context, facingFront bool) (shared.CameraStream, error)
	Capture(ctx context.Context, handleID string) (shared.CapturedFrame, error)
	Release(ctx context.Context, handleID string) error
}

// BridgeCamera implements Camera against the capture bridge HTTP API.
type BridgeCamera struct {
	baseURL    string
	httpClient *http.Client
}

// NewBridgeCamera creates a new instance of BridgeCamera.
func NewBridgeCamera(baseURL string) *BridgeCamera {
	return &BridgeCamera{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *BridgeCamera) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal bridge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach capture bridge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Code string `json:"code"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &failure) == nil && failure.Code != "" {
			return &BridgeError{Code: failure.Code}
		}
		return fmt.Errorf("capture bridge returned status %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode bridge response: %w", err)
		}
	}
	return nil
}

func (c *BridgeCamera) Acquire(ctx context.Context, facingFront bool) (shared.CameraStream, error) {
	var stream shared.CameraStream
	err := c.post(ctx, "/camera/acquire", map[string]any{
		"facingFront": facingFront,
	}, &stream)
	if err != nil {
		return shared.CameraStream{}, err
	}
	return stream, nil
}

func (c *BridgeCamera) Capture(ctx context.Context, handleID string) (shared.CapturedFrame, error) {
	var frame shared.CapturedFrame
	// The bridge captures at the stream's native resolution.
	err := c.post(ctx, "/camera/capture", map[string]any{
		"handleId": handleID,
		"quality":  shared.CaptureJpegQuality,
	}, &frame)
	if err != nil {
		return shared.CapturedFrame{}, err
	}
	return frame, nil
}

func (c *BridgeCamera) Release(ctx context.Context, handleID string) error {
	return c.post(ctx, "/camera/release", map[string]any{"handleId": handleID}, nil)
}
