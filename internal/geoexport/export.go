// Package geoexport converts an assembled model.Area into a
// github.com/twpayne/go-geom multi-polygon, the same conversion target
// used by the ring-stack builder in
// _examples/maxymania-osm-superinserter/geombuild/geombuilder.go. That
// builder assembles geom.LinearRing values from arbitrary linestring
// fragments; the assembler in internal/area has already done that work,
// so this package only has to carry the finished rings across to
// go-geom's flat-coordinate representation.
package geoexport

import (
	"fmt"

	"github.com/twpayne/go-geom"

	"github.com/etresoft/libosmium/internal/model"
)

// ToMultiPolygon converts every ring group of a (valid) Area into one
// polygon of a MultiPolygon, outer ring first followed by its inner
// rings. It returns an error if a has no rings or any ring has fewer
// than three distinct nodes.
func ToMultiPolygon(a model.Area) (*geom.MultiPolygon, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("geoexport: area %d has no rings", a.AreaID)
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for _, g := range a.Rings {
		poly, err := ringGroupToPolygon(g)
		if err != nil {
			return nil, fmt.Errorf("geoexport: area %d: %w", a.AreaID, err)
		}
		if err := mp.Push(poly); err != nil {
			return nil, fmt.Errorf("geoexport: area %d: %w", a.AreaID, err)
		}
	}
	return mp, nil
}

func ringGroupToPolygon(g model.RingGroup) (*geom.Polygon, error) {
	poly := geom.NewPolygon(geom.XY)

	outer, err := ringToLinearRing(g.Outer)
	if err != nil {
		return nil, fmt.Errorf("outer ring: %w", err)
	}
	if err := poly.Push(outer); err != nil {
		return nil, fmt.Errorf("outer ring: %w", err)
	}

	for i, inner := range g.Inners {
		lr, err := ringToLinearRing(inner)
		if err != nil {
			return nil, fmt.Errorf("inner ring %d: %w", i, err)
		}
		if err := poly.Push(lr); err != nil {
			return nil, fmt.Errorf("inner ring %d: %w", i, err)
		}
	}
	return poly, nil
}

// coordScale is the fixed-point scale model.Location expects its callers
// to use (degrees * 1e7), the same convention as middle.ScaleCoord.
const coordScale = 1e7

func ringToLinearRing(r model.Ring) (*geom.LinearRing, error) {
	if len(r.Nodes) < 3 {
		return nil, fmt.Errorf("ring has only %d nodes", len(r.Nodes))
	}
	flat := make([]float64, 0, len(r.Nodes)*2)
	for _, n := range r.Nodes {
		flat = append(flat, float64(n.Location.X)/coordScale, float64(n.Location.Y)/coordScale)
	}
	return geom.NewLinearRingFlat(geom.XY, flat), nil
}
