package wrapper

// State describes where the supervised server is in its lifecycle.
// Transitions: Starting -> Ready on the readiness marker, Ready ->
// Stopping when a stop command is issued, Stopping -> Stopped on process
// exit. A dead producer (broken pipe) is not a state of its own: it is
// detected lazily, the next time a consumer blocks on the console stream
// and finds it closed.
type State string

const (
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)
