package pipeline

// State is the lifecycle of one generation attempt.
//
// Idle -> Streaming -> Finalizing -> Complete is linear. Failed is reachable
// from any non-terminal state on a stream error, and Idle from any state on
// Reset.
type State int

const (
	Idle State = iota
	Streaming
	Finalizing
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Finalizing:
		return "finalizing"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further stream events are accepted in s.
func (s State) Terminal() bool {
	return s == Complete || s == Failed
}
