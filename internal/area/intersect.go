package area

import "github.com/etresoft/libosmium/internal/model"

// Crossing is one reported intersection between two non-identical
// segments.
type Crossing struct {
	Location model.Location
	A, B     NodeRefSegment
}

// cross computes the z-component of (a-o) x (b-o).
func cross(o, a, b model.Location) int64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether r, known to be collinear with p and q, lies
// within p and q's bounding box (i.e. on the closed segment pq).
func onSegment(p, q, r model.Location) bool {
	minX, maxX := p.X, q.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := p.Y, q.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return r.X >= minX && r.X <= maxX && r.Y >= minY && r.Y <= maxY
}

// segmentsCross implements the crossing test of and its open
// question #2 (collinear overlap is not a crossing). Touching at a shared
// endpoint never counts (checked by the caller via sharesEndpoint);
// endpoint-on-interior does count.
func segmentsCross(s1, s2 NodeRefSegment) (model.Location, bool) {
	p1, q1 := s1.First.Location, s1.Second.Location
	p2, q2 := s2.First.Location, s2.Second.Location

	d1 := cross(p1, q1, p2)
	d2 := cross(p1, q1, q2)
	d3 := cross(p2, q2, p1)
	d4 := cross(p2, q2, q1)

	if d1 == 0 && d2 == 0 {
		// s2 lies on the infinite line through s1: collinear overlap,
		// never classified as a crossing (open question #2).
		return model.Location{}, false
	}

	if d1 == 0 && onSegment(p1, q1, p2) {
		return p2, true
	}
	if d2 == 0 && onSegment(p1, q1, q2) {
		return q2, true
	}
	if d3 == 0 && onSegment(p2, q2, p1) {
		return p1, true
	}
	if d4 == 0 && onSegment(p2, q2, q1) {
		return q1, true
	}

	if sign(d1) != sign(d2) && sign(d3) != sign(d4) {
		return intersectionPoint(p1, q1, p2, q2), true
	}
	return model.Location{}, false
}

// intersectionPoint computes the (approximate) location of a proper
// transversal crossing. The result is diagnostic only (// Problem.intersection location) and is never fed back into exact
// coordinate comparisons.
func intersectionPoint(p1, q1, p2, q2 model.Location) model.Location {
	x1, y1 := float64(p1.X), float64(p1.Y)
	x2, y2 := float64(q1.X), float64(q1.Y)
	x3, y3 := float64(p2.X), float64(p2.Y)
	x4, y4 := float64(q2.X), float64(q2.Y)

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if denom == 0 {
		return p1
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	return model.Location{
		X: int64(x1 + t*(x2-x1)),
		Y: int64(y1 + t*(y2-y1)),
	}
}

// FindIntersections reports all crossings between non-identical segments
// in a sorted segment set, using x-range pruning: for each
// segment s1, only subsequent segments whose First.X does not yet exceed
// s1.Second.X are examined, and pairs with disjoint y-ranges are skipped.
func FindIntersections(segs []NodeRefSegment) []Crossing {
	var out []Crossing
	for i, s1 := range segs {
		minY1, maxY1 := segYRange(s1)
		for j := i + 1; j < len(segs); j++ {
			s2 := segs[j]
			if s2.First.Location.X > s1.Second.Location.X {
				break
			}
			minY2, maxY2 := segYRange(s2)
			if maxY1 < minY2 || maxY2 < minY1 {
				continue
			}
			if sameSegment(s1, s2) || sharesEndpoint(s1, s2) {
				continue
			}
			if loc, ok := segmentsCross(s1, s2); ok {
				out = append(out, Crossing{Location: loc, A: s1, B: s2})
			}
		}
	}
	return out
}
