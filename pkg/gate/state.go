package gate

import (
	"fmt"
	"sync"
)

// State is the phase of the current gated attempt.
type State int

const (
	Idle State = iota
	Checking
	Submitting
	Success
	Denied
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Checking:
		return "checking"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Denied:
		return "denied"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Busy reports whether an attempt is running.
func (s State) Busy() bool {
	return s == Checking || s == Submitting
}

type event int

const (
	evCheck event = iota
	evSubmit
	evAllow
	evDeny
	evSucceed
	evReject
	evFail
	evDismiss
)

var eventNames = [...]string{"check", "submit", "allow", "deny", "succeed", "reject", "fail", "dismiss"}

func (e event) String() string {
	return eventNames[e]
}

// transitions is the complete transition table: [from][event] -> to.
var transitions = map[State]map[event]State{
	Idle: {
		evCheck:  Checking,
		evSubmit: Submitting,
	},
	Checking: {
		evAllow: Submitting,
		evDeny:  Denied,
	},
	Submitting: {
		evSucceed: Success,
		evReject:  Denied,
		evFail:    Failed,
	},
	Success: {evDismiss: Idle},
	Denied:  {evDismiss: Idle},
	Failed:  {evDismiss: Idle},
}

// machine tracks one flow's state. Safe for concurrent use.
type machine struct {
	mu      sync.Mutex
	current State
}

func (m *machine) state() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *machine) fire(ev event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fireLocked(ev)
}

func (m *machine) fireLocked(ev event) error {
	to, ok := transitions[m.current][ev]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, m.current)
	}
	m.current = to
	return nil
}

// begin starts a new attempt with ev. A finished attempt that was never
// dismissed is dismissed implicitly; a running one is refused.
func (m *machine) begin(ev event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Busy() {
		return ErrActionInProgress
	}
	if m.current != Idle {
		if err := m.fireLocked(evDismiss); err != nil {
			return err
		}
	}
	return m.fireLocked(ev)
}
