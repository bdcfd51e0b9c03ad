package ai

import "fmt"

// Mode is the behaviour an agent runs on a tick.
type Mode int

const (
	Wander Mode = iota
	Seek
	Flee
	Flock
)

func (m Mode) String() string {
	switch m {
	case Wander:
		return "Wander"
	case Seek:
		return "Seek"
	case Flee:
		return "Flee"
	case Flock:
		return "Flock"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
