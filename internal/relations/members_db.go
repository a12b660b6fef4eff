package relations

import (
	"sort"
	"unsafe"

	"github.com/etresoft/libosmium/internal/model"
	"github.com/etresoft/libosmium/internal/stash"
)

// trackEntry is a Member Tracking Entry: a member id, the
// relation handle that referenced it, and the member's position within
// that relation. relationID is captured at Track time so Remove can match
// against it without dereferencing a handle that may already be released.
type trackEntry struct {
	memberID   int64
	relationID int64
	rel        RelationHandle
	position   int
}

// MembersDatabase is the per-kind Members Database. T is the
// record type stored for this kind (model.Node, model.Way or
// model.Relation). One MembersDatabase exists per member kind, each
// backed by its own Item Stash.
type MembersDatabase[T any] struct {
	kind     model.ItemKind
	rdb      *RelationsDatabase
	st       *stash.Stash[T]
	entries  []trackEntry
	prepared bool
}

// NewMembersDatabase creates an empty Members Database for the given kind,
// whose Track calls increment pending_members on rdb.
func NewMembersDatabase[T any](kind model.ItemKind, rdb *RelationsDatabase) *MembersDatabase[T] {
	return &MembersDatabase[T]{kind: kind, rdb: rdb, st: stash.New[T]()}
}

// Track appends a tracking entry and increments the relation's
// pending_members count. Pass 1 only.
func (m *MembersDatabase[T]) Track(rel RelationHandle, memberID int64, position int) {
	m.entries = append(m.entries, trackEntry{
		memberID:   memberID,
		relationID: rel.ID(),
		rel:        rel,
		position:   position,
	})
	m.rdb.Track(rel)
	m.prepared = false
}

// PrepareForLookup sorts entries by member_id ascending, ties broken by
// relation handle then position, so Add can binary-search.
// Calling it more than once is a no-op after the first.
func (m *MembersDatabase[T]) PrepareForLookup() {
	if m.prepared {
		return
	}
	sort.Slice(m.entries, func(i, j int) bool {
		a, b := m.entries[i], m.entries[j]
		if a.memberID != b.memberID {
			return a.memberID < b.memberID
		}
		if a.rel.idx != b.rel.idx {
			return a.rel.idx < b.rel.idx
		}
		if a.rel.gen != b.rel.gen {
			return a.rel.gen < b.rel.gen
		}
		return a.position < b.position
	})
	m.prepared = true
}

// Add is pass 2's entry point: it binary-searches for entries matching
// incoming's id, copies incoming into the stash once (reusing the handle
// for every other entry with the same id), stores the resulting member
// handle into each referencing relation at its recorded position, removes
// the tracking entry, and calls RelationsDatabase.Complete. Whenever that
// reports a relation has reached zero pending members, onComplete is
// invoked with its handle, after the matched entries have been removed so
// the callback may itself call Remove. Add returns true iff at least one
// entry matched.
func (m *MembersDatabase[T]) Add(id int64, incoming T, onComplete func(RelationHandle)) bool {
	lo := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].memberID >= id })
	if lo >= len(m.entries) || m.entries[lo].memberID != id {
		return false
	}

	hi := lo
	var handle stash.Handle
	haveHandle := false
	var completed []RelationHandle
	for hi < len(m.entries) && m.entries[hi].memberID == id {
		if !haveHandle {
			handle = m.st.Add(incoming)
			haveHandle = true
		}
		e := m.entries[hi]
		e.rel.SetMemberHandle(e.position, MemberHandle{Kind: m.kind, Handle: handle, present: true})
		if m.rdb.Complete(e.rel) {
			completed = append(completed, e.rel)
		}
		hi++
	}

	m.entries = append(m.entries[:lo:lo], m.entries[hi:]...)
	for _, h := range completed {
		onComplete(h)
	}
	return true
}

// Remove erases entries matching both memberID and relationID. Used
// defensively by the completion path to discard tracking entries for
// members that arrived after their relation was already completed by
// others; under normal operation there is nothing left to
// remove by the time a relation completes.
func (m *MembersDatabase[T]) Remove(memberID, relationID int64) {
	out := m.entries[:0]
	for _, e := range m.entries {
		if e.memberID == memberID && e.relationID == relationID {
			continue
		}
		out = append(out, e)
	}
	m.entries = out
}

// Pending reports how many tracking entries are still outstanding, for
// diagnostics.
func (m *MembersDatabase[T]) Pending() int {
	return len(m.entries)
}

// UsedMemory returns the tracking-entry bookkeeping bytes plus the bytes
// used by this database's record stash.
func (m *MembersDatabase[T]) UsedMemory() int64 {
	var e trackEntry
	return int64(len(m.entries))*int64(unsafe.Sizeof(e)) + m.st.UsedMemory()
}
