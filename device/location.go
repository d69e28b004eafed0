package device

import (
	"context"

	"post-approval-verification/shared"
)

// Locator is the patient-side geolocation capability.
type Locator interface {
	CurrentPosition(ctx context.Context) (shared.Coordinates, error)
}

// BridgeLocator implements Locator against the capture bridge HTTP API.
type BridgeLocator struct {
	camera *BridgeCamera
}

// NewBridgeLocator creates a new instance of BridgeLocator sharing the
// bridge connection.
func NewBridgeLocator(baseURL string) *BridgeLocator {
	return &BridgeLocator{camera: NewBridgeCamera(baseURL)}
}

func (l *BridgeLocator) CurrentPosition(ctx context.Context) (shared.Coordinates, error) {
	var coords shared.Coordinates
	if err := l.camera.post(ctx, "/location/current", map[string]any{}, &coords); err != nil {
		return shared.Coordinates{}, err
	}
	return coords, nil
}

// StubLocator returns a fixed position; used when no bridge is configured.
type StubLocator struct {
	Position shared.Coordinates
	Err      error
}

func (l *StubLocator) CurrentPosition(context.Context) (shared.Coordinates, error) {
	if l.Err != nil {
		return shared.Coordinates{}, l.Err
	}
	return l.Position, nil
}
