package app

// Phase is the lifecycle stage of the App.
type Phase int32

const (
	Uninitialized Phase = iota
	Initialized
	Running
	StopRequested
	Stopped
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case StopRequested:
		return "stop-requested"
	case Stopped:
		return "stopped"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}
