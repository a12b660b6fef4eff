package area

import "github.com/etresoft/libosmium/internal/model"

// isBelowOrOn reports whether p lies below (or on) the directed line
// through o.First -> o.Second, via the sign of the 2D cross product
// (o.b - o.a) x (p - o.a) <= 0.
func isBelowOrOn(o NodeRefSegment, p model.Location) bool {
	ax := o.Second.Location.X - o.First.Location.X
	ay := o.Second.Location.Y - o.First.Location.Y
	bx := p.X - o.First.Location.X
	by := p.Y - o.First.Location.Y
	return ax*by-ay*bx <= 0
}

// assignOrientation implements the new-ring orientation sweep of spec
// §4.8. segIdx is the index (in the canonical sort order) of the segment
// that is starting a brand-new ring. It records the chosen orientation
// and left-neighbor into b.meta[segIdx].
//
// Winding convention (open question #1, decided once here and
// reused by the ring builder and the outer/inner classifier): cw == true
// means the ring this segment starts is an outer ring. A segment with no
// left-neighbor (nothing to its left in the sweep) defaults to cw == true
// — the first ring encountered is always outer.
func (b *Builder) assignOrientation(segIdx int) {
	s := b.segs[segIdx]

	left := -1
	for j := segIdx - 1; j >= 0; j-- {
		o := b.segs[j]
		minY, maxY := segYRange(o)
		if s.First.Location.Y >= minY && s.First.Location.Y <= maxY {
			left = j
			break
		}
	}

	if left == -1 {
		b.meta[segIdx].cw = true
		b.meta[segIdx].left = -1
		if b.debug != nil {
			b.debug("area: segment %d starts new ring with default orientation cw=true (no left neighbor)", segIdx)
		}
		return
	}

	o := b.segs[left]
	oCW := b.meta[left].cw

	var cw bool
	switch {
	case o.First.Location.X <= s.First.Location.X && o.Second.Location.X <= s.First.Location.X:
		cw = !oCW
	case isBelowOrOn(o, s.First.Location):
		cw = !oCW
	default:
		cw = oCW
	}

	b.meta[segIdx].cw = cw
	b.meta[segIdx].left = left
	if b.debug != nil {
		b.debug("area: segment %d starts new ring, left-neighbor=%d, cw=%v", segIdx, left, cw)
	}
}
