package area

import (
	"fmt"

	"github.com/etresoft/libosmium/internal/model"
)

// ProblemKind enumerates the per-relation defect kinds of .
type ProblemKind uint8

const (
	ProblemIntersection ProblemKind = iota
	ProblemRingNotClosed
	ProblemOrphanInner
)

func (k ProblemKind) String() string {
	switch k {
	case ProblemIntersection:
		return "intersection"
	case ProblemRingNotClosed:
		return "ring_not_closed"
	case ProblemOrphanInner:
		return "orphan_inner"
	default:
		return "unknown"
	}
}

// Problem records one detected input defect (remember_problems
// knob). When RememberProblems is false, detection still occurs but only
// the boolean invalid outcome is kept by the caller.
type Problem struct {
	Kind     ProblemKind
	Location model.Location
	SegA     NodeRefSegment // only meaningful for ProblemIntersection
	SegB     NodeRefSegment // only meaningful for ProblemIntersection
	Endpoint model.NodeRef  // only meaningful for ProblemRingNotClosed and ProblemOrphanInner
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemIntersection:
		return fmt.Sprintf("intersection at (%d,%d) between segments (%d-%d) and (%d-%d)",
			p.Location.X, p.Location.Y, p.SegA.First.Ref, p.SegA.Second.Ref, p.SegB.First.Ref, p.SegB.Second.Ref)
	case ProblemRingNotClosed:
		return fmt.Sprintf("ring not closed at node %d (%d,%d)", p.Endpoint.Ref, p.Endpoint.Location.X, p.Endpoint.Location.Y)
	case ProblemOrphanInner:
		return fmt.Sprintf("inner ring with no enclosing outer, starting at node %d", p.Endpoint.Ref)
	default:
		return "unknown problem"
	}
}
