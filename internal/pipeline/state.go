package pipeline

import "fmt"

// State is the lifecycle stage of a Runner.
type State int

const (
	Initializing State = iota
	Running
	Draining
	Terminated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case Running:
		return "Running"
	case Draining:
		return "Draining"
	case Terminated:
		return "Terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
