package responder

// State of the accept loop. WAITING -> ACCEPTED -> VALIDATED, then either
// DONE (payload was ping and pong went out) or back to WAITING.
type State int32

const (
	StateWaiting State = iota
	StateAccepted
	StateValidated
	StateDone
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateAccepted:
		return "ACCEPTED"
	case StateValidated:
		return "VALIDATED"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

func (s State) Terminal() bool {
	return s == StateDone
}
