package geoexport

import (
	"testing"

	"github.com/etresoft/libosmium/internal/model"
)

func ring(kind model.RingKind, coords ...[2]int64) model.Ring {
	nodes := make([]model.NodeRef, len(coords))
	for i, c := range coords {
		nodes[i] = model.NodeRef{Ref: int64(i + 1), Location: model.Location{X: c[0], Y: c[1]}}
	}
	return model.Ring{Kind: kind, Nodes: nodes}
}

func TestToMultiPolygonSingleOuter(t *testing.T) {
	a := model.Area{
		AreaID: model.DeriveAreaID(1),
		Rings: []model.RingGroup{{
			Outer: ring(model.RingOuter,
				[2]int64{0, 0}, [2]int64{100000000, 0}, [2]int64{100000000, 100000000}, [2]int64{0, 100000000}, [2]int64{0, 0}),
		}},
	}

	mp, err := ToMultiPolygon(a)
	if err != nil {
		t.Fatalf("ToMultiPolygon: %v", err)
	}
	if mp.NumPolygons() != 1 {
		t.Fatalf("expected 1 polygon, got %d", mp.NumPolygons())
	}
	poly := mp.Polygon(0)
	if poly.NumLinearRings() != 1 {
		t.Fatalf("expected 1 linear ring, got %d", poly.NumLinearRings())
	}
	lr := poly.LinearRing(0)
	if lr.NumCoords() != 5 {
		t.Fatalf("expected 5 coords, got %d", lr.NumCoords())
	}
	c := lr.Coord(1)
	if c[0] != 10 || c[1] != 0 {
		t.Fatalf("expected unscaled coord (10,0), got (%v,%v)", c[0], c[1])
	}
}

func TestToMultiPolygonOuterWithInner(t *testing.T) {
	a := model.Area{
		AreaID: model.DeriveAreaID(2),
		Rings: []model.RingGroup{{
			Outer: ring(model.RingOuter,
				[2]int64{0, 0}, [2]int64{100000000, 0}, [2]int64{100000000, 100000000}, [2]int64{0, 100000000}, [2]int64{0, 0}),
			Inners: []model.Ring{ring(model.RingInner,
				[2]int64{20000000, 20000000}, [2]int64{40000000, 20000000}, [2]int64{40000000, 40000000}, [2]int64{20000000, 40000000}, [2]int64{20000000, 20000000})},
		}},
	}

	mp, err := ToMultiPolygon(a)
	if err != nil {
		t.Fatalf("ToMultiPolygon: %v", err)
	}
	poly := mp.Polygon(0)
	if poly.NumLinearRings() != 2 {
		t.Fatalf("expected 2 linear rings, got %d", poly.NumLinearRings())
	}
}

func TestToMultiPolygonRejectsEmptyArea(t *testing.T) {
	if _, err := ToMultiPolygon(model.Area{AreaID: model.DeriveAreaID(3)}); err == nil {
		t.Fatalf("expected an error for an area with no rings")
	}
}

func TestToMultiPolygonRejectsShortRing(t *testing.T) {
	a := model.Area{
		AreaID: model.DeriveAreaID(4),
		Rings: []model.RingGroup{{
			Outer: ring(model.RingOuter, [2]int64{0, 0}, [2]int64{1, 1}),
		}},
	}
	if _, err := ToMultiPolygon(a); err == nil {
		t.Fatalf("expected an error for a ring with fewer than 3 nodes")
	}
}
