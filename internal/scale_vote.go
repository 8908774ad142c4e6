package internal

import "fmt"

// ScaleVote represents the direction a single monitor, or the whole host,
// wants the worker count to move in.
type ScaleVote int

const (
	ScaleVoteNone ScaleVote = iota
	ScaleVoteScaleOut
	ScaleVoteScaleIn
)

func (v ScaleVote) String() string {
	switch v {
	case ScaleVoteNone:
		return "None"
	case ScaleVoteScaleOut:
		return "ScaleOut"
	case ScaleVoteScaleIn:
		return "ScaleIn"
	default:
		return fmt.Sprintf("ScaleVote(%d)", int(v))
	}
}

// MarshalText renders the vote by name so it reads well in logs and JSON.
func (v ScaleVote) MarshalText() ([]byte, error) {
	switch v {
	case ScaleVoteNone, ScaleVoteScaleOut, ScaleVoteScaleIn:
		return []byte(v.String()), nil
	default:
		return nil, fmt.Errorf("unknown scale vote %d", int(v))
	}
}

func (v *ScaleVote) UnmarshalText(text []byte) error {
	switch string(text) {
	case "None":
		*v = ScaleVoteNone
	case "ScaleOut":
		*v = ScaleVoteScaleOut
	case "ScaleIn":
		*v = ScaleVoteScaleIn
	default:
		return fmt.Errorf("unknown scale vote %q", string(text))
	}

	return nil
}

// ScaleStatusContext is what a monitor gets to look at when casting its vote.
type ScaleStatusContext struct {
	// Number of workers currently serving the host.
	WorkerCount int

	// History of samples for the monitor being asked, oldest first.
	Metrics []Sample
}

// ScaleStatusResult is the operator-facing rendition of a scale decision.
type ScaleStatusResult struct {
	Vote ScaleVote `json:"vote"`
}
