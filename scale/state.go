package scale

import (
	"sync"
	"sync/atomic"
)

// State represents the stage of a driver session.
type State uint32

// Driver session states.
const (
	// DisconnectedState indicates that no transport link exists.
	DisconnectedState State = iota
	// LinkedState indicates that the transport link is up and the handshake is running.
	LinkedState
	// ConnectedState indicates that the handshake succeeded and readings are flowing.
	ConnectedState
	// ReconnectPendingState indicates that the link was lost and will be re-established on the next Update.
	ReconnectPendingState
)

// IsDisconnected returns if the state is disconnected.
func (s State) IsDisconnected() bool { return s == DisconnectedState }

// IsLinked returns if the state is linked.
func (s State) IsLinked() bool { return s == LinkedState }

// IsConnected returns if the state is connected.
func (s State) IsConnected() bool { return s == ConnectedState }

// IsReconnectPending returns if the state is reconnect pending.
func (s State) IsReconnectPending() bool { return s == ReconnectPendingState }

// String returns string representation of the state.
func (s State) String() string {
	switch s {
	case DisconnectedState:
		return "disconnected"
	case LinkedState:
		return "linked"
	case ConnectedState:
		return "connected"
	case ReconnectPendingState:
		return "reconnect-pending"
	default:
		return "unknown"
	}
}

// StateChangeHandler is invoked after the state of a driver changes.
//
// Note: the handler is invoked synchronously while the state manager lock is held.
// It must not call Driver methods that change state.
type StateChangeHandler func(drv Driver, prevState State, newState State)

// stateMgr tracks the state of one session and validates transitions.
type stateMgr struct {
	mu       sync.Mutex
	state    atomic.Uint32
	drv      Driver
	handlers []StateChangeHandler
}

func newStateMgr(drv Driver, handlers ...StateChangeHandler) *stateMgr {
	mgr := &stateMgr{drv: drv}
	mgr.handlers = append(mgr.handlers, handlers...)
	mgr.state.Store(uint32(DisconnectedState))

	return mgr
}

// State returns the current state.
func (m *stateMgr) State() State {
	return State(m.state.Load())
}

// AddHandler appends state change handlers.
func (m *stateMgr) AddHandler(handlers ...StateChangeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers = append(m.handlers, handlers...)
}

// ToDisconnected is allowed from any state.
func (m *stateMgr) ToDisconnected() {
	_ = m.transition(DisconnectedState, func(State) bool { return true })
}

// ToLinked is only allowed from DisconnectedState.
func (m *stateMgr) ToLinked() error {
	return m.transition(LinkedState, State.IsDisconnected)
}

// ToConnected is only allowed from LinkedState.
func (m *stateMgr) ToConnected() error {
	return m.transition(ConnectedState, State.IsLinked)
}

// ToReconnectPending is allowed from any state; it marks a failed or lost link for recovery.
func (m *stateMgr) ToReconnectPending() error {
	return m.transition(ReconnectPendingState, func(State) bool { return true })
}

// CompareAndSwap moves from oldState to newState only if the current state is oldState.
func (m *stateMgr) CompareAndSwap(oldState, newState State) bool {
	swapped := false
	_ = m.transition(newState, func(cur State) bool {
		swapped = cur == oldState
		return swapped
	})

	return swapped
}

func (m *stateMgr) transition(newState State, allowed func(State) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	curState := m.State()
	if curState == newState {
		return nil
	}
	if !allowed(curState) {
		return ErrInvalidTransition
	}

	m.state.Store(uint32(newState))
	for _, handler := range m.handlers {
		if handler != nil {
			handler(m.drv, curState, newState)
		}
	}

	return nil
}
