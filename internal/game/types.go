package game

import (
	"context"

	"chosenoffset.com/roomwalk/internal/scene"
)

// State is the session lifecycle.
type State int

const (
	// StateLoading shows the loading indicator while the room is composed.
	StateLoading State = iota
	// StateWalking runs the walk loop.
	StateWalking
	// StateFailed shows the composition error. The walk loop never runs.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateWalking:
		return "walking"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is published whenever the session changes state.
type Status struct {
	State State
	Err   error
}

// Composer builds the complete scene. It must return either a scene with every
// asset attached or an error.
type Composer interface {
	Compose(ctx context.Context) (*scene.Scene, error)
}

type composeResult struct {
	scene *scene.Scene
	err   error
}
