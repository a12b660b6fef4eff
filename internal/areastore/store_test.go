package areastore

import (
	"encoding/binary"
	"testing"

	"github.com/etresoft/libosmium/internal/model"
	"github.com/etresoft/libosmium/internal/wkb"
)

func ring(coords ...[2]int64) model.Ring {
	nodes := make([]model.NodeRef, len(coords))
	for i, c := range coords {
		nodes[i] = model.NodeRef{Ref: int64(i + 1), Location: model.Location{X: c[0], Y: c[1]}}
	}
	return model.Ring{Nodes: nodes}
}

func TestEncodeMultiPolygonRoundTripsRingCount(t *testing.T) {
	s := &Store{srid: wkb.SRID4326}
	a := model.Area{
		AreaID: model.DeriveAreaID(7),
		Rings: []model.RingGroup{{
			Outer: ring([2]int64{0, 0}, [2]int64{100000000, 0}, [2]int64{100000000, 100000000}, [2]int64{0, 100000000}, [2]int64{0, 0}),
			Inners: []model.Ring{ring(
				[2]int64{20000000, 20000000}, [2]int64{40000000, 20000000}, [2]int64{40000000, 40000000}, [2]int64{20000000, 40000000}, [2]int64{20000000, 20000000},
			)},
		}},
	}

	buf, err := s.encodeMultiPolygon(a)
	if err != nil {
		t.Fatalf("encodeMultiPolygon: %v", err)
	}
	if len(buf) == 0 {
		t.Fatalf("expected non-empty EWKB buffer")
	}
	// EWKB: order(1) type(4) srid(4) npolys(4), then order(1) type(4) nrings(4).
	if n := binary.LittleEndian.Uint32(buf[9:13]); n != 1 {
		t.Fatalf("expected 1 polygon, got %d", n)
	}
	if n := binary.LittleEndian.Uint32(buf[18:22]); n != 2 {
		t.Fatalf("expected 2 rings (outer + inner), got %d", n)
	}
}

func TestEncodeMultiPolygonRejectsShortRing(t *testing.T) {
	s := &Store{srid: wkb.SRID4326}
	a := model.Area{
		AreaID: model.DeriveAreaID(8),
		Rings:  []model.RingGroup{{Outer: ring([2]int64{0, 0}, [2]int64{1, 1})}},
	}
	if _, err := s.encodeMultiPolygon(a); err == nil {
		t.Fatalf("expected an error for a ring with fewer than 3 nodes")
	}
}

func TestRingCoordsUnscalesFixedPoint(t *testing.T) {
	r := ring([2]int64{10000000, 20000000}, [2]int64{30000000, 40000000}, [2]int64{0, 0})
	coords, err := ringCoords(r)
	if err != nil {
		t.Fatalf("ringCoords: %v", err)
	}
	if coords[0] != 1 || coords[1] != 2 {
		t.Fatalf("expected unscaled (1,2), got (%v,%v)", coords[0], coords[1])
	}
}
