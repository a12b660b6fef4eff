// Package relations implements a two-pass relation manager: the
// Relations Database, the per-kind Members Database, the order-check
// layer, and the Manager that orchestrates the two passes over the
// input stream.
//
// Grounded line-by-line on original_source/include/osmium/relations/
// relations_manager.hpp (osmium::relations::RelationsDatabase,
// MembersDatabase, RelationsManagerBase, RelationsManager).
package relations

import "github.com/etresoft/libosmium/internal/model"

// Manager orchestrates the two passes described in . Pass 1
// registers relations of interest and the members they reference; pass 2
// streams every object in canonical order and routes it through the
// correct per-kind Members Database, firing Policy.CompleteRelation the
// moment a relation's pending-member count reaches zero.
type Manager struct {
	policy Policy
	hooks  Hooks

	rdb      *RelationsDatabase
	nodesDB  *MembersDatabase[model.Node]
	waysDB   *MembersDatabase[model.Way]
	relsDB   *MembersDatabase[model.Relation]

	order1 OrderCheck // pass 1: relations only
	order2 OrderCheck // pass 2: nodes, then ways, then relations

	// OnComplete, if set, runs after policy.CompleteRelation but before
	// the relation's member-tracking entries are released, so it can
	// still call ResolveNode/ResolveWay/ResolveRelation against h to
	// gather the member objects an assembler needs. Unlike
	// Policy.CompleteRelation (a selection-level hook that only sees
	// tags), this is the wiring-level hook cmd/assemble uses to hand a
	// completed relation's resolved way members to internal/areapool.
	OnComplete func(m *Manager, h RelationHandle)
}

// NewManager creates a Manager driven by policy. hooks may be nil, in
// which case NopHooks is used.
func NewManager(policy Policy, hooks Hooks) *Manager {
	if hooks == nil {
		hooks = NopHooks{}
	}
	rdb := NewRelationsDatabase()
	return &Manager{
		policy:  policy,
		hooks:   hooks,
		rdb:     rdb,
		nodesDB: NewMembersDatabase[model.Node](model.KindNode, rdb),
		waysDB:  NewMembersDatabase[model.Way](model.KindWay, rdb),
		relsDB:  NewMembersDatabase[model.Relation](model.KindRelation, rdb),
	}
}

// Pass1Relation feeds one relation from the input stream's relations
// block into pass 1. rel is copied into the Relations
// Database only if policy.SelectRelation returns true.
func (m *Manager) Pass1Relation(rel model.Relation) error {
	if err := m.order1.Check(model.KindRelation, rel.ID); err != nil {
		return err
	}
	if !m.policy.SelectRelation(&rel) {
		return nil
	}

	h := m.rdb.Add(rel)
	stored := h.Relation()
	for pos := range stored.Members {
		member := stored.Members[pos]
		if m.policy.SelectMember(stored, member, pos) {
			switch member.Kind {
			case model.KindNode:
				m.nodesDB.Track(h, member.Ref, pos)
			case model.KindWay:
				m.waysDB.Track(h, member.Ref, pos)
			case model.KindRelation:
				m.relsDB.Track(h, member.Ref, pos)
			}
		} else {
			stored.Members[pos].Ref = 0
		}
	}
	return nil
}

// PreparePass2 sorts every Members Database for binary-search lookup.
// Must be called after pass 1 finishes and before any Pass2* call.
func (m *Manager) PreparePass2() {
	m.nodesDB.PrepareForLookup()
	m.waysDB.PrepareForLookup()
	m.relsDB.PrepareForLookup()
	m.order2.Reset()
}

// Pass2Node feeds one node from the ascending-id nodes block of pass 2.
func (m *Manager) Pass2Node(n model.Node) error {
	if err := m.order2.Check(model.KindNode, n.ID); err != nil {
		return err
	}
	m.hooks.BeforeNode(n)
	if !m.nodesDB.Add(n.ID, n, m.handleComplete) {
		m.hooks.NotInAnyRelationNode(n)
	}
	m.hooks.AfterNode(n)
	m.hooks.Flush()
	return nil
}

// Pass2Way feeds one way from the ascending-id ways block of pass 2.
func (m *Manager) Pass2Way(w model.Way) error {
	if err := m.order2.Check(model.KindWay, w.ID); err != nil {
		return err
	}
	m.hooks.BeforeWay(w)
	if !m.waysDB.Add(w.ID, w, m.handleComplete) {
		m.hooks.NotInAnyRelationWay(w)
	}
	m.hooks.AfterWay(w)
	m.hooks.Flush()
	return nil
}

// Pass2Relation feeds one relation from the ascending-id relations block
// of pass 2 (a relation may itself be a member of another relation).
func (m *Manager) Pass2Relation(r model.Relation) error {
	if err := m.order2.Check(model.KindRelation, r.ID); err != nil {
		return err
	}
	m.hooks.BeforeRelation(r)
	if !m.relsDB.Add(r.ID, r, m.handleComplete) {
		m.hooks.NotInAnyRelationRelation(r)
	}
	m.hooks.AfterRelation(r)
	m.hooks.Flush()
	return nil
}

// handleComplete is the completion callback passed to every Members
// Database's Add: it invokes the policy's CompleteRelation, then
// releases the relation handle and any tracking entries still
// referencing it (defensive Remove).
func (m *Manager) handleComplete(h RelationHandle) {
	relCopy := *h.Relation()

	m.policy.CompleteRelation(&relCopy)
	if m.OnComplete != nil {
		m.OnComplete(m, h)
	}

	for _, mem := range relCopy.Members {
		if mem.Ref == 0 {
			continue
		}
		switch mem.Kind {
		case model.KindNode:
			m.nodesDB.Remove(mem.Ref, relCopy.ID)
		case model.KindWay:
			m.waysDB.Remove(mem.Ref, relCopy.ID)
		case model.KindRelation:
			m.relsDB.Remove(mem.Ref, relCopy.ID)
		}
	}
	m.rdb.Remove(h)
}

// ResolveNode dereferences a member handle obtained from
// RelationHandle.MemberHandle for a node member. It panics if h does not
// refer to a node — a Stash/DB invariant breach per .
func (m *Manager) ResolveNode(h MemberHandle) *model.Node {
	if h.Kind != model.KindNode || !h.Valid() {
		panic("relations: ResolveNode called on non-node or empty MemberHandle")
	}
	return m.nodesDB.st.Get(h.Handle)
}

// ResolveWay dereferences a member handle for a way member.
func (m *Manager) ResolveWay(h MemberHandle) *model.Way {
	if h.Kind != model.KindWay || !h.Valid() {
		panic("relations: ResolveWay called on non-way or empty MemberHandle")
	}
	return m.waysDB.st.Get(h.Handle)
}

// ResolveRelation dereferences a member handle for a relation member.
func (m *Manager) ResolveRelation(h MemberHandle) *model.Relation {
	if h.Kind != model.KindRelation || !h.Valid() {
		panic("relations: ResolveRelation called on non-relation or empty MemberHandle")
	}
	return m.relsDB.st.Get(h.Handle)
}

// MemoryUsage breaks down the manager's memory footprint by subsystem,
// mirroring the original's relations_manager_memory_usage.
type MemoryUsage struct {
	RelationsDB int64 // row bookkeeping only
	MembersDB   int64 // tracking entries + per-kind stashes
	Stash       int64 // relation record stash
}

// UsedMemory reports the manager's current memory footprint.
func (m *Manager) UsedMemory() MemoryUsage {
	return MemoryUsage{
		RelationsDB: m.rdb.BookkeepingMemory(),
		MembersDB:   m.nodesDB.UsedMemory() + m.waysDB.UsedMemory() + m.relsDB.UsedMemory(),
		Stash:       m.rdb.StashMemory(),
	}
}

// Pending reports how many member tracking entries, summed over the node,
// way and relation Members Databases, are still outstanding, for
// diagnostics and tests.
func (m *Manager) Pending() int {
	return m.nodesDB.Pending() + m.waysDB.Pending() + m.relsDB.Pending()
}
