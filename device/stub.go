package device

import (
	"context"
	"fmt"
	"sync"

	"post-approval-verification/shared"
)

// StubCamera is an in-memory Camera for development and activity tests. It
// tracks acquire/release pairing so leaked streams are visible.
type StubCamera struct {
	mutex sync.Mutex

	// FrontErr makes the front-facing acquisition fail; AnyErr makes the
	// fallback acquisition fail too.
	FrontErr error
	AnyErr   error
	// Frame is returned by Capture.
	Frame shared.CapturedFrame

	nextHandle int
	open       map[string]bool
	Acquired   int
	Released   int
}

func NewStubCamera() *StubCamera {
	return &StubCamera{open: make(map[string]bool)}
}

func (c *StubCamera) Acquire(_ context.Context, facingFront bool) (shared.CameraStream, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if facingFront && c.FrontErr != nil {
		return shared.CameraStream{}, c.FrontErr
	}
	if !facingFront && c.AnyErr != nil {
		return shared.CameraStream{}, c.AnyErr
	}

	c.nextHandle++
	handle := fmt.Sprintf("stream-%d", c.nextHandle)
	c.open[handle] = true
	c.Acquired++
	return shared.CameraStream{HandleID: handle, FacingFront: facingFront}, nil
}

func (c *StubCamera) Capture(_ context.Context, handleID string) (shared.CapturedFrame, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.open[handleID] {
		return shared.CapturedFrame{}, fmt.Errorf("capture on closed stream %s", handleID)
	}
	return c.Frame, nil
}

func (c *StubCamera) Release(_ context.Context, handleID string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.open[handleID] {
		return fmt.Errorf("release of unknown stream %s", handleID)
	}
	delete(c.open, handleID)
	c.Released++
	return nil
}

// OpenStreams reports streams acquired but not yet released.
func (c *StubCamera) OpenStreams() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.open)
}
