package area

import "github.com/etresoft/libosmium/internal/model"

// segMeta carries the mutable per-segment annotations of // (NodeRefSegment's "ring back-pointer", "orientation flag",
// "left-neighbor pointer") as a parallel array indexed by segment
// position, per the design note in : all writes to a segment's
// metadata precede any subsequent read of it.
type segMeta struct {
	ring int // index into Builder.rings, -1 until assigned
	cw   bool
	left int // index of left-neighbor segment, -1 if none
}

// protoRing is an ordered, possibly-open sequence of node references.
// Rings live in a slice and are referenced by index rather than by
// pointer (a re-architecture of the original's pointer-stable linked
// list): when two rings merge, the absorbed ring is
// marked dead and every segment's back-pointer that named it is rewritten
// to the surviving index.
type protoRing struct {
	nodes  []model.NodeRef
	alive  bool
	outer  bool
	inners []int
}

func (r *protoRing) closed() bool {
	return len(r.nodes) > 1 && r.nodes[0] == r.nodes[len(r.nodes)-1]
}

// Builder assembles ProtoRings from a canonically sorted, deduplicated
// segment list.
type Builder struct {
	segs  []NodeRefSegment
	meta  []segMeta
	rings []protoRing
	debug func(format string, args ...any)
}

// NewBuilder creates a ring Builder over a canonically sorted,
// deduplicated segment slice. debug, if non-nil, receives diagnostic
// traces when the assembler's debug_output knob is enabled.
func NewBuilder(segs []NodeRefSegment, debug func(string, ...any)) *Builder {
	meta := make([]segMeta, len(segs))
	for i := range meta {
		meta[i].ring = -1
		meta[i].left = -1
	}
	return &Builder{segs: segs, meta: meta, debug: debug}
}

// Build walks every segment in canonical order, joining it onto an
// existing open ring or starting a new one, and returns the resulting
// ProtoRings.
func (b *Builder) Build() []protoRing {
	for i, seg := range b.segs {
		if !b.tryAttach(i, seg) {
			ridx := len(b.rings)
			b.rings = append(b.rings, protoRing{nodes: []model.NodeRef{seg.First, seg.Second}, alive: true})
			b.meta[i].ring = ridx
			b.assignOrientation(i)
			b.rings[ridx].outer = b.meta[i].cw
			if b.debug != nil {
				b.debug("area: segment %d starts ring %d (outer=%v)", i, ridx, b.rings[ridx].outer)
			}
		}
	}
	return b.rings
}

// tryAttach implements the per-ring test-in-order of : for each
// existing open ring, in ring-creation order, test ring.last==seg.first,
// ring.last==seg.second, ring.first==seg.first, ring.first==seg.second.
// The first ring with any match wins.
func (b *Builder) tryAttach(segIdx int, seg NodeRefSegment) bool {
	for ridx := range b.rings {
		r := &b.rings[ridx]
		if !r.alive || r.closed() {
			continue
		}
		last := r.nodes[len(r.nodes)-1]
		first := r.nodes[0]

		var extendedLast bool
		switch {
		case last == seg.First:
			r.nodes = append(r.nodes, seg.Second)
			extendedLast = true
		case last == seg.Second:
			r.nodes = append(r.nodes, seg.First)
			extendedLast = true
		case first == seg.First:
			r.nodes = prepend(r.nodes, seg.Second)
		case first == seg.Second:
			r.nodes = prepend(r.nodes, seg.First)
		default:
			continue
		}

		b.meta[segIdx].ring = ridx
		if b.debug != nil {
			b.debug("area: segment %d joins ring %d (extended_last=%v)", segIdx, ridx, extendedLast)
		}
		b.combineRings(ridx, extendedLast)
		return true
	}
	return false
}

func prepend(nodes []model.NodeRef, n model.NodeRef) []model.NodeRef {
	out := make([]model.NodeRef, 0, len(nodes)+1)
	out = append(out, n)
	out = append(out, nodes...)
	return out
}

// combineRings implements merge step: if the newly extended
// end of ring ridx now equals the start or end of any other open ring,
// splice the two into one and reassign every segment back-pointer that
// named the absorbed ring. Repeats in case the merged ring's new end
// itself coincides with a third ring.
func (b *Builder) combineRings(ridx int, extendedLast bool) {
	for {
		r := &b.rings[ridx]
		var endVal model.NodeRef
		if extendedLast {
			endVal = r.nodes[len(r.nodes)-1]
		} else {
			endVal = r.nodes[0]
		}

		merged := -1
		for oidx := range b.rings {
			if oidx == ridx {
				continue
			}
			o := &b.rings[oidx]
			if !o.alive || o.closed() {
				continue
			}
			switch {
			case endVal == o.nodes[len(o.nodes)-1]:
				b.spliceRings(ridx, extendedLast, oidx, true)
				merged = oidx
			case endVal == o.nodes[0]:
				b.spliceRings(ridx, extendedLast, oidx, false)
				merged = oidx
			}
			if merged != -1 {
				break
			}
		}
		if merged == -1 {
			return
		}
		if b.debug != nil {
			b.debug("area: combined ring %d into ring %d", merged, ridx)
		}
	}
}

// spliceRings joins ring oidx onto ring ridx at the end named by
// extendedLast, marks oidx dead, and reassigns every segment whose
// back-pointer named oidx to ridx instead.
func (b *Builder) spliceRings(ridx int, extendedLast bool, oidx int, oMatchedAtLast bool) {
	r := &b.rings[ridx]
	o := b.rings[oidx]

	var combined []model.NodeRef
	switch {
	case extendedLast && oMatchedAtLast:
		combined = append(append([]model.NodeRef{}, r.nodes...), reversed(o.nodes[:len(o.nodes)-1])...)
	case extendedLast && !oMatchedAtLast:
		combined = append(append([]model.NodeRef{}, r.nodes...), o.nodes[1:]...)
	case !extendedLast && oMatchedAtLast:
		combined = append(append([]model.NodeRef{}, o.nodes[:len(o.nodes)-1]...), r.nodes...)
	default: // !extendedLast && !oMatchedAtLast
		combined = append(reversed(o.nodes[1:]), r.nodes...)
	}

	r.nodes = combined
	b.rings[oidx].alive = false

	for i := range b.meta {
		if b.meta[i].ring == oidx {
			b.meta[i].ring = ridx
		}
	}
}

func reversed(nodes []model.NodeRef) []model.NodeRef {
	out := make([]model.NodeRef, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}

// UnclosedEndpoints returns, for every alive-but-unclosed ring, its first
// and last node references (: "every ring must be closed...
// unclosed rings are fatal for this relation").
func UnclosedEndpoints(rings []protoRing) [][2]model.NodeRef {
	var out [][2]model.NodeRef
	for _, r := range rings {
		if r.alive && !r.closed() {
			out = append(out, [2]model.NodeRef{r.nodes[0], r.nodes[len(r.nodes)-1]})
		}
	}
	return out
}
