package area

import "testing"

func seg(fx, fy, sx, sy int64) NodeRefSegment {
	return canonicalize(nr(1, fx, fy), nr(2, sx, sy))
}

func TestDedupSegmentsOddMultiplicity(t *testing.T) {
	segs := []NodeRefSegment{seg(0, 0, 1, 1), seg(0, 0, 1, 1), seg(0, 0, 1, 1)}
	SortSegments(segs)
	got := DedupSegments(segs)
	if len(got) != 1 {
		t.Fatalf("multiplicity 3 should leave 1 segment, got %d", len(got))
	}
}

func TestDedupSegmentsEvenMultiplicityFour(t *testing.T) {
	segs := []NodeRefSegment{
		seg(0, 0, 1, 1), seg(0, 0, 1, 1), seg(0, 0, 1, 1), seg(0, 0, 1, 1),
	}
	SortSegments(segs)
	got := DedupSegments(segs)
	if len(got) != 0 {
		t.Fatalf("multiplicity 4 should leave 0 segments, got %d", len(got))
	}
}

func TestDedupSegmentsNoDuplicates(t *testing.T) {
	segs := []NodeRefSegment{seg(0, 0, 1, 1), seg(5, 5, 6, 6)}
	SortSegments(segs)
	got := DedupSegments(segs)
	if len(got) != 2 {
		t.Fatalf("distinct segments should survive untouched, got %d", len(got))
	}
}

func TestFindIntersectionsCollinearOverlapNotReported(t *testing.T) {
	// Two collinear, overlapping segments on the line y=0, no shared endpoint.
	s1 := canonicalize(nr(1, 0, 0), nr(2, 10, 0))
	s2 := canonicalize(nr(3, 5, 0), nr(4, 15, 0))
	segs := []NodeRefSegment{s1, s2}
	SortSegments(segs)

	got := FindIntersections(segs)
	if len(got) != 0 {
		t.Fatalf("collinear overlap must not be reported as a crossing, got %v", got)
	}
}

func TestFindIntersectionsEndpointOnInteriorCounts(t *testing.T) {
	// s2's endpoint touches the interior of s1 without sharing any node.
	s1 := canonicalize(nr(1, 0, 0), nr(2, 10, 0))
	s2 := canonicalize(nr(3, 5, 0), nr(4, 5, 10))
	segs := []NodeRefSegment{s1, s2}
	SortSegments(segs)

	got := FindIntersections(segs)
	if len(got) != 1 {
		t.Fatalf("endpoint-on-interior must be reported as a crossing, got %v", got)
	}
}

func TestFindIntersectionsSharedEndpointNotCounted(t *testing.T) {
	s1 := canonicalize(nr(1, 0, 0), nr(2, 10, 0))
	s2 := canonicalize(nr(1, 0, 0), nr(3, 0, 10))
	segs := []NodeRefSegment{s1, s2}
	SortSegments(segs)

	got := FindIntersections(segs)
	if len(got) != 0 {
		t.Fatalf("touching at a shared endpoint must not count as a crossing, got %v", got)
	}
}
