package area

import "github.com/etresoft/libosmium/internal/model"

// pointInRing is a standard integer ray-casting point-in-polygon test
// against a ring's closed node-reference polyline.
func pointInRing(p model.Location, nodes []model.NodeRef) bool {
	inside := false
	n := len(nodes)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := nodes[i].Location, nodes[j].Location
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			den := pj.Y - pi.Y
			num := (p.Y - pi.Y) * (pj.X - pi.X)
			lhs := (p.X - pi.X) * den
			if (den > 0 && lhs < num) || (den < 0 && lhs > num) {
				inside = !inside
			}
		}
	}
	return inside
}

// classifyRings assigns each inner ring to its enclosing outer ring (spec
// §4.9). It returns the populated outer indices (each with its Inners
// slice filled in) and any orphan-inner problems. An orphan inner ring is
// fatal to the whole assembly, so the caller should treat a
// non-empty return of problems as "emit the ringless area and stop."
func classifyRings(rings []protoRing) (outerIdx []int, problems []Problem) {
	var innerIdx []int
	for i, r := range rings {
		if !r.alive {
			continue
		}
		if r.outer {
			outerIdx = append(outerIdx, i)
		} else {
			innerIdx = append(innerIdx, i)
		}
	}

	for _, ii := range innerIdx {
		inner := &rings[ii]
		found := -1
		for _, oi := range outerIdx {
			if pointInRing(inner.nodes[0].Location, rings[oi].nodes) {
				found = oi
				break
			}
		}
		if found == -1 {
			problems = append(problems, Problem{Kind: ProblemOrphanInner, Endpoint: inner.nodes[0]})
			continue
		}
		rings[found].inners = append(rings[found].inners, ii)
	}
	return outerIdx, problems
}
