// Package camera owns the single process-wide camera handle used for
// proctoring. Acquisition and release are idempotent so every exit path
// can release unconditionally.
package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrPermissionDenied means the user or OS refused camera access.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrDeviceUnavailable means no usable camera device exists.
	ErrDeviceUnavailable = errors.New("camera device unavailable")
)

// Frame is one captured still image. The payload is opaque to callers.
type Frame struct {
	Data       []byte
	MIMEType   string
	CapturedAt time.Time
}

// Device opens a stream of frames from some camera source.
type Device interface {
	// Open starts streaming. Errors should wrap ErrPermissionDenied or
	// ErrDeviceUnavailable where the cause is known.
	Open(ctx context.Context) (Stream, error)

	// Name describes the device for logs and the UI.
	Name() string
}

// Stream is an open camera stream.
type Stream interface {
	// Latest returns the most recent frame, or false if none is available yet.
	Latest() (Frame, bool)
	Close() error
}

// Handle identifies an acquired camera. A handle goes stale once released.
type Handle struct {
	id uint64
}

// Resource guards the device so that at most one handle is acquired at any
// time across the process.
type Resource struct {
	mu     sync.Mutex
	device Device
	stream Stream
	handle *Handle
	nextID uint64

	opens  int
	closes int
}

// NewResource wraps a device. A nil device behaves as Unavailable.
func NewResource(d Device) *Resource {
	if d == nil {
		d = Unavailable{}
	}
	return &Resource{device: d}
}

// Acquire opens the device, or returns the existing handle if one is held.
func (r *Resource) Acquire(ctx context.Context) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle != nil {
		return r.handle, nil
	}

	stream, err := r.device.Open(ctx)
	if err != nil {
		return nil, classify(err)
	}

	r.nextID++
	r.opens++
	r.stream = stream
	r.handle = &Handle{id: r.nextID}
	return r.handle, nil
}

// CaptureFrame returns the latest frame for h. It returns nil, rather than
// failing, when h is stale or no frame has arrived yet.
func (r *Resource) CaptureFrame(h *Handle) *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h == nil || r.handle != h || r.stream == nil {
		return nil
	}
	f, ok := r.stream.Latest()
	if !ok || len(f.Data) == 0 {
		return nil
	}
	if f.CapturedAt.IsZero() {
		f.CapturedAt = time.Now()
	}
	return &f
}

// Release closes the stream behind h. Releasing nil, a stale handle or an
// already-released handle is a no-op.
func (r *Resource) Release(h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h == nil || r.handle != h {
		return nil
	}

	stream := r.stream
	r.stream = nil
	r.handle = nil
	r.closes++

	if err := stream.Close(); err != nil {
		return fmt.Errorf("close %s: %w", r.device.Name(), err)
	}
	return nil
}

// Held reports whether a handle is currently acquired.
func (r *Resource) Held() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle != nil
}

// DeviceName returns the wrapped device's name.
func (r *Resource) DeviceName() string {
	return r.device.Name()
}

// Stats returns how many times the device was opened and closed.
func (r *Resource) Stats() (opens, closes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens, r.closes
}

// classify makes sure every acquisition failure matches one of the two
// taxonomy errors.
func classify(err error) error {
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
}

// Unavailable is the device used when no camera is configured.
type Unavailable struct{}

func (Unavailable) Open(context.Context) (Stream, error) {
	return nil, fmt.Errorf("%w: no camera configured", ErrDeviceUnavailable)
}

func (Unavailable) Name() string { return "none" }
