package relations

import (
	"fmt"
	"unsafe"

	"github.com/etresoft/libosmium/internal/model"
	"github.com/etresoft/libosmium/internal/stash"
)

// MemberHandle is an opaque reference to a member record copied into one
// of the per-kind Members Database stashes as a tracking entry. Kind
// says which stash to resolve it against.
type MemberHandle struct {
	Kind    model.ItemKind
	Handle  stash.Handle
	present bool
}

// Valid reports whether h refers to a resolved member.
func (h MemberHandle) Valid() bool { return h.present }

type relationRow struct {
	rec           stash.Handle
	pending       int
	memberHandles []MemberHandle
	used          bool
	gen           uint32
}

// RelationsDatabase stores relation-of-interest handles with a
// per-relation pending-member count, and notifies callers when that count
// reaches zero.
type RelationsDatabase struct {
	st   *stash.Stash[model.Relation]
	rows []relationRow
	free []uint32
}

// NewRelationsDatabase creates an empty RelationsDatabase.
func NewRelationsDatabase() *RelationsDatabase {
	return &RelationsDatabase{st: stash.New[model.Relation]()}
}

// RelationHandle is a stable reference to one pending relation row. The
// zero value is not valid; only values returned by Add are meaningful.
type RelationHandle struct {
	db  *RelationsDatabase
	idx uint32
	gen uint32
}

// ID returns the handle's relation id.
func (h RelationHandle) ID() int64 {
	return h.Relation().ID
}

// Relation returns a pointer to the stored relation record. The pointer
// is mutable so the manager can rewrite uninteresting members' Ref to 0
// and is valid only while the handle itself is valid.
func (h RelationHandle) Relation() *model.Relation {
	row := h.db.row(h)
	return h.db.st.Get(row.rec)
}

// PendingMembers returns the relation's current pending-member count.
func (h RelationHandle) PendingMembers() int {
	return h.db.row(h).pending
}

// SetMemberHandle records the member handle resolved for the member at
// position ("stores the member handle into the pending relation
// at position").
func (h RelationHandle) SetMemberHandle(position int, mh MemberHandle) {
	h.db.row(h).memberHandles[position] = mh
}

// MemberHandle returns the member handle previously stored at position,
// if any.
func (h RelationHandle) MemberHandle(position int) MemberHandle {
	return h.db.row(h).memberHandles[position]
}

func (d *RelationsDatabase) row(h RelationHandle) *relationRow {
	if h.db != d || h.gen == 0 || int(h.idx) >= len(d.rows) {
		panic("relations: invalid RelationHandle")
	}
	r := &d.rows[h.idx]
	if !r.used || r.gen != h.gen {
		panic("relations: use of stale or released RelationHandle")
	}
	return r
}

// Add stores rel in the stash and returns a handle wrapping pending_members
// == 0 initially.
func (d *RelationsDatabase) Add(rel model.Relation) RelationHandle {
	h := d.st.Add(rel)
	memberHandles := make([]MemberHandle, len(rel.Members))

	var idx uint32
	if n := len(d.free); n > 0 {
		idx = d.free[n-1]
		d.free = d.free[:n-1]
		r := &d.rows[idx]
		r.rec, r.pending, r.memberHandles, r.used = h, 0, memberHandles, true
		r.gen++
	} else {
		idx = uint32(len(d.rows))
		d.rows = append(d.rows, relationRow{rec: h, memberHandles: memberHandles, used: true, gen: 1})
	}
	return RelationHandle{db: d, idx: idx, gen: d.rows[idx].gen}
}

// Track increments a relation's pending_members count.
func (d *RelationsDatabase) Track(h RelationHandle) {
	d.row(h).pending++
}

// Complete decrements a relation's pending_members count and returns true
// iff it reaches zero.
func (d *RelationsDatabase) Complete(h RelationHandle) bool {
	r := d.row(h)
	r.pending--
	if r.pending < 0 {
		panic("relations: pending_members went negative — stash/DB invariant breach")
	}
	return r.pending == 0
}

// Remove releases the relation and its row. It panics if pending_members
// is still greater than zero — the invariant in ("a handle's row
// is never freed while pending_members > 0") is a programming error to
// violate, not a recoverable condition.
func (d *RelationsDatabase) Remove(h RelationHandle) {
	r := d.row(h)
	if r.pending > 0 {
		panic(fmt.Sprintf("relations: Remove called on relation %d with %d members still pending", h.ID(), r.pending))
	}
	d.st.Remove(r.rec)
	r.used = false
	r.memberHandles = nil
	d.free = append(d.free, h.idx)
}

// UsedMemory returns the row bookkeeping bytes plus the relation stash
// bytes, for diagnostics.
func (d *RelationsDatabase) UsedMemory() int64 {
	return d.BookkeepingMemory() + d.StashMemory()
}

// BookkeepingMemory returns only the row-table overhead (// "pending_members" bookkeeping), excluding the relation copies
// themselves. Used by memory usage rollup to separate
// the relations-database bucket from the stash bucket.
func (d *RelationsDatabase) BookkeepingMemory() int64 {
	var rowSize relationRow
	return int64(len(d.rows)) * int64(unsafe.Sizeof(rowSize))
}

// StashMemory returns the bytes used by the underlying relation stash.
func (d *RelationsDatabase) StashMemory() int64 {
	return d.st.UsedMemory()
}
