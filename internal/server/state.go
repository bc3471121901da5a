package server

// State is the lifecycle position of a Connection.
//
//	Disconnected --Connect--> Connected --SendStart(YEP)--> Started
//	Started --first PollCapacity--> Monitoring
//	any RPC failure --> Failed (terminal)
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Started
	Monitoring
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Started:
		return "started"
	case Monitoring:
		return "monitoring"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// HasChannel reports whether a connection in this state owns an open stream.
func (s State) HasChannel() bool {
	return s == Connected || s == Started || s == Monitoring
}

// CanPoll reports whether the polling capacity query is allowed.
func (s State) CanPoll() bool {
	return s == Started || s == Monitoring
}
