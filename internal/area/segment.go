// Package area implements the polygon assembler of : given
// the way members of a single multipolygon relation, it reconstructs
// valid outer/inner rings from an unordered set of undirected edges and
// emits a model.Area.
//
// Grounded line-by-line on original_source/include/osmium/area/
// assembler.hpp (osmium::area::Assembler): the same variable roles
// reappear here (is_below, find_intersections, combine_rings_*, the
// backwards left-neighbor scan).
package area

import (
	"sort"

	"github.com/etresoft/libosmium/internal/model"
)

// NodeRefSegment is an unordered pair of node references, canonicalized
// so that First carries the smaller (x, y) location.
type NodeRefSegment struct {
	First, Second model.NodeRef
}

// canonicalize orders a and b so the endpoint with the smaller location
// sorts first.
func canonicalize(a, b model.NodeRef) NodeRefSegment {
	if b.Location.Less(a.Location) {
		a, b = b, a
	}
	return NodeRefSegment{First: a, Second: b}
}

// BuildSegments converts the node-sequences of ways into canonical
// undirected edges. Pairs where either endpoint's location is
// unset, or where the two node references are the same node, are skipped.
func BuildSegments(ways []model.Way) []NodeRefSegment {
	var segs []NodeRefSegment
	for _, w := range ways {
		for i := 0; i+1 < len(w.Nodes); i++ {
			a, b := w.Nodes[i], w.Nodes[i+1]
			if !a.Location.Valid() || !b.Location.Valid() || a.Ref == b.Ref {
				continue
			}
			segs = append(segs, canonicalize(a, b))
		}
	}
	return segs
}

// segLess orders segments by (first.x, first.y, second.x, second.y), the
// canonical sort order of .
func segLess(a, b NodeRefSegment) bool {
	if a.First.Location != b.First.Location {
		return a.First.Location.Less(b.First.Location)
	}
	return a.Second.Location.Less(b.Second.Location)
}

// SortSegments sorts segs in place into the canonical order.
func SortSegments(segs []NodeRefSegment) {
	sort.Slice(segs, func(i, j int) bool { return segLess(segs[i], segs[j]) })
}

// coordEqual reports whether two segments share the same four
// coordinates, ignoring which node ids happen to carry them. This is the
// equality dedup pass operates on.
func coordEqual(a, b NodeRefSegment) bool {
	return a.First.Location == b.First.Location && a.Second.Location == b.Second.Location
}

// DedupSegments repeatedly finds adjacent equal segments (by coordinates)
// in a sorted slice and deletes them as a pair, modeling the rule that an
// edge shared by two ways cancels out. Odd multiplicity leaves exactly
// one instance; even multiplicity of four or higher resolves because the
// scan restarts after every deletion.
func DedupSegments(segs []NodeRefSegment) []NodeRefSegment {
	for {
		removed := false
		for i := 0; i+1 < len(segs); i++ {
			if coordEqual(segs[i], segs[i+1]) {
				segs = append(segs[:i], segs[i+2:]...)
				removed = true
				break
			}
		}
		if !removed {
			return segs
		}
	}
}

func segYRange(s NodeRefSegment) (min, max int64) {
	y1, y2 := s.First.Location.Y, s.Second.Location.Y
	if y1 <= y2 {
		return y1, y2
	}
	return y2, y1
}

// sharesEndpoint reports whether a and b have any endpoint at the same
// location.
func sharesEndpoint(a, b NodeRefSegment) bool {
	return a.First.Location == b.First.Location || a.First.Location == b.Second.Location ||
		a.Second.Location == b.First.Location || a.Second.Location == b.Second.Location
}

func sameSegment(a, b NodeRefSegment) bool {
	return coordEqual(a, b)
}
