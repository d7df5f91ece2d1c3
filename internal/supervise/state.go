package supervise

// State is the lifecycle state of a managed process.
type State string

const (
	StateNotStarted State = "not_started"
	StateStarting   State = "starting"
	StateReady      State = "ready"
	StateFailed     State = "failed"
	StateTerminated State = "terminated"
)

// rank orders the forward-only lifecycle. Terminated is absorbing and
// reachable from any state.
var rank = map[State]int{
	StateNotStarted: 0,
	StateStarting:   1,
	StateReady:      2,
	StateFailed:     2,
	StateTerminated: 3,
}

// canTransition reports whether moving from -> to is a legal transition.
func canTransition(from, to State) bool {
	if from == StateTerminated {
		return false
	}
	if to == StateTerminated {
		return true
	}
	return rank[to] > rank[from]
}
