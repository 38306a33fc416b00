package domain

import "fmt"

// PursuitOutcome - тег результата PursuitResult.
type PursuitOutcome uint8

const (
	PursuitNoPath PursuitOutcome = iota
	PursuitReachedTarget
	PursuitFoundPath
)

// PursuitResult is what the pursuit policy decides for an idle pursuer.
//   - NoPath: nothing to do this tick.
//   - ReachedTarget: Cell is the tile holding the target.
//   - FoundPath: Cell is the next tile on the path.
type PursuitResult struct {
	Outcome PursuitOutcome
	Cell    GridCell
}

func NoPath() PursuitResult {
	return PursuitResult{Outcome: PursuitNoPath}
}

func ReachedTarget(cell GridCell) PursuitResult {
	return PursuitResult{Outcome: PursuitReachedTarget, Cell: cell}
}

func FoundPath(next GridCell) PursuitResult {
	return PursuitResult{Outcome: PursuitFoundPath, Cell: next}
}

func (r PursuitResult) String() string {
	switch r.Outcome {
	case PursuitReachedTarget:
		return fmt.Sprintf("ReachedTarget%s", r.Cell)
	case PursuitFoundPath:
		return fmt.Sprintf("FoundPath%s", r.Cell)
	default:
		return "NoPath"
	}
}
