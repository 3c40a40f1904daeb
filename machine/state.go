// Package machine implements the playback state machine: the single authority over a player's session context.
//
// Every mutation of the session happens inside Machine.Dispatch. Side effects are issued to a Media
// implementation after the step commits; anything they report back re-enters as an ordinary event.
package machine

import "fmt"

// State is a node of the playback state machine.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Buffering
	Seeking
	Error
)

// String returns a human-readable label for the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Buffering:
		return "Buffering"
	case Seeking:
		return "Seeking"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Attached reports whether a resource is attached in this state.
func (s State) Attached() bool {
	return s != Idle && s != Error
}
