package session

import tea "charm.land/bubbletea/v2"

// ConsentGate holds the action waiting on the learner's camera consent.
// Consent is never granted implicitly; a denial drops the waiting action.
type ConsentGate struct {
	granted bool
	pending func() (tea.Cmd, error)
}

// Granted reports whether consent has been given.
func (g *ConsentGate) Granted() bool { return g.granted }

// Waiting reports whether an action is parked behind the gate.
func (g *ConsentGate) Waiting() bool { return g.pending != nil }

// Defer parks fn until Resolve is called.
func (g *ConsentGate) Defer(fn func() (tea.Cmd, error)) { g.pending = fn }

// Resolve records the decision. On allow it runs the parked action exactly
// once; on deny the action is discarded.
func (g *ConsentGate) Resolve(allow bool) (tea.Cmd, error) {
	fn := g.pending
	g.pending = nil
	if !allow {
		return nil, nil
	}
	g.granted = true
	if fn == nil {
		return nil, nil
	}
	return fn()
}

// Clear withdraws any grant and drops a pending continuation. Consent is
// never carried over from one session to the next.
func (g *ConsentGate) Clear() {
	g.granted = false
	g.pending = nil
}
