package capture

type State int

const (
	StateIdle State = iota
	StateStarting
	StateListening
	StatePendingRestart
	StateRefreshing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StatePendingRestart:
		return "pending_restart"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
