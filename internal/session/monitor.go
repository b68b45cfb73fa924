package session

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizwatch/internal/camera"
)

// Scheduler returns a command that delivers msg after d unless ctx is
// cancelled first.
type Scheduler func(ctx context.Context, d time.Duration, msg tea.Msg) tea.Cmd

// After is the default Scheduler.
func After(ctx context.Context, d time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			return msg
		}
	}
}

type cycleKind int

const (
	evidenceCycle cycleKind = iota
	attentionCycle
)

func (k cycleKind) String() string {
	if k == evidenceCycle {
		return "evidence"
	}
	return "attention"
}

// cycle is one periodic task. Each start takes a fresh token; a tick whose
// token does not match the cycle's current token is stale.
type cycle struct {
	kind     cycleKind
	token    uint64
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func (c *cycle) running() bool { return c.cancel != nil }

// Monitor owns the camera handle and the two monitoring cycles.
type Monitor struct {
	camera   *camera.Resource
	handle   *camera.Handle
	camErr   error
	schedule Scheduler

	evidence  cycle
	attention cycle
	nextToken uint64
}

// NewMonitor creates a monitor over res.
func NewMonitor(res *camera.Resource, schedule Scheduler) *Monitor {
	if schedule == nil {
		schedule = After
	}
	return &Monitor{
		camera:    res,
		schedule:  schedule,
		evidence:  cycle{kind: evidenceCycle},
		attention: cycle{kind: attentionCycle},
	}
}

// ensureCamera acquires the camera on first use. A failed acquisition
// sticks until the monitor is reset, leaving the session unmonitored.
func (m *Monitor) ensureCamera(ctx context.Context) bool {
	if m.handle != nil {
		return true
	}
	if m.camErr != nil || m.camera == nil {
		return false
	}
	h, err := m.camera.Acquire(ctx)
	if err != nil {
		m.camErr = err
		return false
	}
	m.handle = h
	return true
}

// HasCamera reports whether a camera handle is held.
func (m *Monitor) HasCamera() bool { return m.handle != nil }

// CameraErr returns the acquisition failure, if any.
func (m *Monitor) CameraErr() error { return m.camErr }

func (m *Monitor) cycleFor(k cycleKind) *cycle {
	if k == evidenceCycle {
		return &m.evidence
	}
	return &m.attention
}

func (m *Monitor) start(parent context.Context, k cycleKind, interval time.Duration) tea.Cmd {
	c := m.cycleFor(k)
	m.stop(k)
	m.nextToken++
	c.token = m.nextToken
	c.interval = interval
	c.ctx, c.cancel = context.WithCancel(parent)
	return m.schedule(c.ctx, interval, tickMsg{kind: k, token: c.token})
}

func (m *Monitor) stop(k cycleKind) {
	c := m.cycleFor(k)
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = nil
	c.ctx = nil
	m.nextToken++
	c.token = m.nextToken
}

// valid reports whether a tick belongs to the running cycle.
func (m *Monitor) valid(t tickMsg) bool {
	c := m.cycleFor(t.kind)
	return c.running() && c.token == t.token
}

// rearm schedules the next tick of a running cycle under the same token.
func (m *Monitor) rearm(k cycleKind) tea.Cmd {
	c := m.cycleFor(k)
	if !c.running() {
		return nil
	}
	return m.schedule(c.ctx, c.interval, tickMsg{kind: k, token: c.token})
}

func (m *Monitor) capture() *camera.Frame {
	if m.handle == nil {
		return nil
	}
	return m.camera.CaptureFrame(m.handle)
}

// Shutdown stops both cycles and releases the camera.
func (m *Monitor) Shutdown() error {
	m.stop(evidenceCycle)
	m.stop(attentionCycle)
	h := m.handle
	m.handle = nil
	if h == nil {
		return nil
	}
	return m.camera.Release(h)
}

// Reset shuts down and forgets a sticky camera failure.
func (m *Monitor) Reset() error {
	err := m.Shutdown()
	m.camErr = nil
	return err
}
