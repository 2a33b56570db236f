package staging

// Status is the resolution state of a staged entity. It only moves forward,
// or jumps to StatusFailed; the strict status-equality batch selection is
// what makes re-running a stage idempotent.
type Status int

const (
	StatusFailed      Status = -1
	StatusPending     Status = 0
	StatusRawResolved Status = 1
	StatusMapped      Status = 2
	StatusComplete    Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusPending:
		return "pending"
	case StatusRawResolved:
		return "raw-resolved"
	case StatusMapped:
		return "mapped"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}
