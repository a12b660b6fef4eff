// Package model defines the data types that flow through the relations
// manager and area assembler: nodes, ways, relations and their members,
// plus the Area records the assembler produces.
//
// Coordinates are signed fixed-point integers so that equality is exact
// and bit-stable across runs, per the data model in .
package model

import "time"

// Location is a fixed-point coordinate pair. Callers are responsible for
// choosing a scale (e.g. degrees * 1e7, matching osm2pgsql-go's
// middle.ScaleCoord) before constructing one; the core never interprets
// the units, only compares them exactly.
type Location struct {
	X, Y int64
}

// Valid reports whether the location has been set. The zero Location is
// reserved to mean "unset" (mirrors osmium::Location's undefined state).
func (l Location) Valid() bool {
	return l != Location{}
}

// Less orders locations by X then Y, the canonical ordering used to pick
// the "first" endpoint of a segment.
func (l Location) Less(o Location) bool {
	if l.X != o.X {
		return l.X < o.X
	}
	return l.Y < o.Y
}

// ItemKind identifies what a Member refers to.
type ItemKind uint8

const (
	KindNode ItemKind = iota
	KindWay
	KindRelation
)

func (k ItemKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindWay:
		return "way"
	case KindRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// Meta carries the metadata fields common to nodes, ways and relations.
type Meta struct {
	Version   int32
	Changeset int64
	Timestamp time.Time
	User      string
	UID       int32
	Visible   bool
}

// Node is a point with an identity and a location.
type Node struct {
	ID       int64
	Location Location
	Tags     map[string]string
	Meta     Meta
}

// NodeRef is a reference to a node from within a way, optionally carrying
// the node's resolved location once pass 2 has supplied it.
type NodeRef struct {
	Ref      int64
	Location Location
}

// Way is an ordered polyline over node references.
type Way struct {
	ID    int64
	Nodes []NodeRef
	Tags  map[string]string
	Meta  Meta
}

// Member is one entry in a relation: a kind, a referenced id, and a role.
// A Ref of 0 means "not interesting" — the relations manager rewrites
// uninteresting members this way in pass 1.
type Member struct {
	Kind ItemKind
	Ref  int64
	Role string
}

// Relation is a tagged collection of members.
type Relation struct {
	ID      int64
	Members []Member
	Tags    map[string]string
	Meta    Meta
}

// RingKind distinguishes outer and inner rings in an assembled Area.
type RingKind uint8

const (
	RingOuter RingKind = iota
	RingInner
)

// Ring is a closed sequence of node references in emission order.
type Ring struct {
	Kind  RingKind
	Nodes []NodeRef
}

// RingGroup is one outer ring together with the inner rings (holes)
// classified as belonging to it.
type RingGroup struct {
	Outer  Ring
	Inners []Ring
}

// Area is the record the assembler emits for one multipolygon relation.
// AreaID is derived as relation_id*2+1 so areas derived from
// relations never collide with areas derived directly from closed ways
// (even ids, not produced by this package).
type Area struct {
	AreaID int64
	Meta   Meta
	Tags   map[string]string
	Rings  []RingGroup
}

// RelationID recovers the source relation id from an Area's derived id.
func (a Area) RelationID() int64 {
	return (a.AreaID - 1) / 2
}

// Valid reports whether the area carries any geometry. A ringless area is
// "defined" to be invalid per ; it still carries metadata and
// tags and is still emitted.
func (a Area) Valid() bool {
	return len(a.Rings) > 0
}

// DeriveAreaID implements the area_id = relation_id*2+1 encoding.
func DeriveAreaID(relationID int64) int64 {
	return relationID*2 + 1
}
