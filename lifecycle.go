package atelier

import "runtime"

// State is the coordinator's lifecycle state.
type State int

const (
	// StateNotStarted is the state before the platform reports ready.
	StateNotStarted State = iota
	// StateRunning means the API server is up and the app is serving windows.
	StateRunning
	// StateStopping is entered once quit begins.
	StateStopping
	// StateStopped is terminal.
	StateStopped
)

// String implements [fmt.Stringer].
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// EventType identifies a platform lifecycle event.
type EventType int

const (
	// EventReady is sent once when the platform can create windows.
	EventReady EventType = iota + 1
	// EventActivate is sent when the user re-activates the app (dock click).
	EventActivate
	// EventWindowClosed is sent after a window has closed.
	EventWindowClosed
	// EventBeforeQuit is sent when the app is about to quit.
	EventBeforeQuit
)

// String implements [fmt.Stringer].
func (t EventType) String() string {
	switch t {
	case EventReady:
		return "ready"
	case EventActivate:
		return "activate"
	case EventWindowClosed:
		return "window_closed"
	case EventBeforeQuit:
		return "before_quit"
	default:
		return "unknown"
	}
}

// Event is a platform event posted to a [Coordinator].
type Event struct {
	Type EventType

	// WindowID names the window for EventWindowClosed. Empty means the
	// main window.
	WindowID string
}

// Policy decides what happens when the last window closes.
type Policy int

const (
	// QuitOnLastWindowClosed quits the app when no windows remain.
	QuitOnLastWindowClosed Policy = iota
	// KeepAlive keeps the app running with zero windows until an explicit
	// quit; activating it opens a new window.
	KeepAlive
)

// String implements [fmt.Stringer].
func (p Policy) String() string {
	if p == KeepAlive {
		return "keep_alive"
	}
	return "quit_on_last_window_closed"
}

// ParsePolicy maps a config value onto a [Policy]. Empty or "auto" picks the
// platform default.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "auto":
		return DefaultPolicy(), true
	case "quit", "quit_on_last_window_closed":
		return QuitOnLastWindowClosed, true
	case "keep_alive", "keep-alive":
		return KeepAlive, true
	default:
		return 0, false
	}
}

// DefaultPolicy is KeepAlive on macOS and QuitOnLastWindowClosed elsewhere.
func DefaultPolicy() Policy {
	return policyFor(runtime.GOOS)
}

func policyFor(goos string) Policy {
	if goos == "darwin" {
		return KeepAlive
	}
	return QuitOnLastWindowClosed
}
