package computer

// State of a computer's lifecycle.
type State int

const (
	Off State = iota
	Running
	Shutdown
	Reboot
)

func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case Running:
		return "running"
	case Shutdown:
		return "shutdown"
	case Reboot:
		return "reboot"
	default:
		return "unknown"
	}
}
