package area

import (
	"testing"

	"github.com/etresoft/libosmium/internal/model"
)

func nr(ref, x, y int64) model.NodeRef {
	return model.NodeRef{Ref: ref, Location: model.Location{X: x, Y: y}}
}

func way(id int64, nodes ...model.NodeRef) model.Way {
	return model.Way{ID: id, Nodes: nodes}
}

// Scenario 1: single closed way, square.
func TestAssembleSingleSquare(t *testing.T) {
	w := way(1,
		nr(1, 0, 0), nr(2, 10, 0), nr(3, 10, 10), nr(4, 0, 10), nr(1, 0, 0))

	a := NewAssembler(Config{})
	res := a.Assemble(model.Relation{ID: 42}, []model.Way{w})

	if !res.Area.Valid() {
		t.Fatalf("expected a valid area, got %+v", res.Area)
	}
	if got, want := res.Area.AreaID, int64(42*2+1); got != want {
		t.Fatalf("AreaID = %d, want %d", got, want)
	}
	if len(res.Area.Rings) != 1 {
		t.Fatalf("expected 1 outer ring group, got %d", len(res.Area.Rings))
	}
	if len(res.Area.Rings[0].Inners) != 0 {
		t.Fatalf("expected no inner rings, got %d", len(res.Area.Rings[0].Inners))
	}
	outer := res.Area.Rings[0].Outer.Nodes
	if outer[0] != outer[len(outer)-1] {
		t.Fatalf("outer ring not closed: %v", outer)
	}
}

// Scenario 2: two disjoint closed ways in one relation.
func TestAssembleTwoDisjointSquares(t *testing.T) {
	w1 := way(1, nr(1, 0, 0), nr(2, 10, 0), nr(3, 10, 10), nr(4, 0, 10), nr(1, 0, 0))
	w2 := way(2, nr(5, 100, 100), nr(6, 110, 100), nr(7, 110, 110), nr(8, 100, 110), nr(5, 100, 100))

	a := NewAssembler(Config{})
	res := a.Assemble(model.Relation{ID: 7}, []model.Way{w1, w2})

	if !res.Area.Valid() {
		t.Fatalf("expected a valid area, got %+v", res.Area)
	}
	if len(res.Area.Rings) != 2 {
		t.Fatalf("expected 2 outer ring groups, got %d", len(res.Area.Rings))
	}
	for _, g := range res.Area.Rings {
		if len(g.Inners) != 0 {
			t.Fatalf("expected no inner rings, got %d", len(g.Inners))
		}
	}
}

// Scenario 3: outer square plus an inner square entirely inside it.
func TestAssembleOuterWithInner(t *testing.T) {
	outer := way(1, nr(1, 0, 0), nr(2, 100, 0), nr(3, 100, 100), nr(4, 0, 100), nr(1, 0, 0))
	inner := way(2, nr(5, 20, 20), nr(6, 40, 20), nr(7, 40, 40), nr(8, 20, 40), nr(5, 20, 20))

	a := NewAssembler(Config{})
	res := a.Assemble(model.Relation{ID: 9}, []model.Way{outer, inner})

	if !res.Area.Valid() {
		t.Fatalf("expected a valid area, got %+v", res.Area)
	}
	if len(res.Area.Rings) != 1 {
		t.Fatalf("expected 1 outer ring group, got %d", len(res.Area.Rings))
	}
	if len(res.Area.Rings[0].Inners) != 1 {
		t.Fatalf("expected 1 inner ring, got %d", len(res.Area.Rings[0].Inners))
	}
}

// Scenario 4: two ways that share one edge traversed in opposite
// directions; the shared edge cancels, leaving a single outer ring.
func TestAssembleSharedEdgeCancels(t *testing.T) {
	// Square split into two triangle-ish ways along the diagonal (0,0)-(10,10),
	// traversed in opposite directions by each way.
	w1 := way(1, nr(1, 0, 0), nr(2, 10, 0), nr(3, 10, 10), nr(1, 0, 0))
	w2 := way(2, nr(1, 0, 0), nr(3, 10, 10), nr(4, 0, 10), nr(1, 0, 0))

	a := NewAssembler(Config{})
	res := a.Assemble(model.Relation{ID: 11}, []model.Way{w1, w2})

	if !res.Area.Valid() {
		t.Fatalf("expected a valid area, got %+v", res.Area)
	}
	if len(res.Area.Rings) != 1 {
		t.Fatalf("expected 1 outer ring group, got %d", len(res.Area.Rings))
	}
	outerLen := len(res.Area.Rings[0].Outer.Nodes)
	// 4 distinct corners + closing node == 5; the shared diagonal must not
	// appear as its own edge.
	if outerLen != 5 {
		t.Fatalf("expected 5 node refs in merged outer ring, got %d: %v", outerLen, res.Area.Rings[0].Outer.Nodes)
	}
}

// Scenario 5: two ways forming an "X", crossing in the interior with no
// shared endpoint.
func TestAssembleCrossingSegmentsInvalid(t *testing.T) {
	w1 := way(1, nr(1, 0, 0), nr(2, 10, 10))
	w2 := way(2, nr(3, 0, 10), nr(4, 10, 0))

	a := NewAssembler(Config{RememberProblems: true})
	res := a.Assemble(model.Relation{ID: 13, Tags: map[string]string{"type": "multipolygon"}}, []model.Way{w1, w2})

	if res.Area.Valid() {
		t.Fatalf("expected a ringless area, got %+v", res.Area)
	}
	if res.Area.Tags["type"] != "multipolygon" {
		t.Fatalf("expected tags to survive on a ringless area")
	}
	var intersections int
	for _, p := range res.Problems {
		if p.Kind == ProblemIntersection {
			intersections++
		}
	}
	if intersections != 1 {
		t.Fatalf("expected exactly 1 intersection problem, got %d (%v)", intersections, res.Problems)
	}
}

// Scenario 6: three segments forming an open chain.
func TestAssembleOpenChainUnclosed(t *testing.T) {
	w := way(1, nr(1, 0, 0), nr(2, 1, 0), nr(3, 2, 0), nr(4, 3, 0))

	a := NewAssembler(Config{RememberProblems: true})
	res := a.Assemble(model.Relation{ID: 17}, []model.Way{w})

	if res.Area.Valid() {
		t.Fatalf("expected a ringless area, got %+v", res.Area)
	}
	var unclosed int
	for _, p := range res.Problems {
		if p.Kind == ProblemRingNotClosed {
			unclosed++
		}
	}
	if unclosed != 2 {
		t.Fatalf("expected exactly 2 ring_not_closed problems (one per endpoint), got %d (%v)", unclosed, res.Problems)
	}
}

// RememberProblems == false still detects defects but discards the list.
func TestAssembleRememberProblemsFalseDiscardsList(t *testing.T) {
	w1 := way(1, nr(1, 0, 0), nr(2, 10, 10))
	w2 := way(2, nr(3, 0, 10), nr(4, 10, 0))

	a := NewAssembler(Config{RememberProblems: false})
	res := a.Assemble(model.Relation{ID: 19}, []model.Way{w1, w2})

	if res.Area.Valid() {
		t.Fatalf("expected a ringless area, got %+v", res.Area)
	}
	if len(res.Problems) != 0 {
		t.Fatalf("expected no retained problems, got %d", len(res.Problems))
	}
}
