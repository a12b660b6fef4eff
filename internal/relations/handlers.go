package relations

import "github.com/etresoft/libosmium/internal/model"

// Policy supplies the three user hooks the manager leaves as its only
// required extension points. A concrete Manager is built by passing a
// Policy at construction — this is the "small vtable" the original's
// CRTP-based static dispatch is replaced with.
type Policy interface {
	// SelectRelation decides, in pass 1, whether rel should be tracked at
	// all. Returning false means the relation is never stored and none of
	// its members are tracked.
	SelectRelation(rel *model.Relation) bool

	// SelectMember decides, in pass 1, whether the member at position
	// within rel is "interesting" — i.e. whether the manager should wait
	// for it before declaring rel complete. Returning false causes the
	// stored copy's member Ref at that position to be rewritten to 0.
	SelectMember(rel *model.Relation, member model.Member, position int) bool

	// CompleteRelation is called exactly once per selected relation, in
	// pass 2, once every selected member has been observed. rel is a copy
	// of the stored relation (unselected members have Ref 0); it carries
	// no member handles. Resolved members are reachable through the
	// RelationHandle passed to Manager.OnComplete.
	CompleteRelation(rel *model.Relation)
}

// Hooks are the optional before_X / not_in_any_relation_X / after_X
// callbacks invoked around every pass-2 object regardless
// of whether it matched a tracked member. NopHooks implements Hooks with
// no-ops so a Policy only needs to embed it and override what it cares
// about.
type Hooks interface {
	BeforeNode(model.Node)
	NotInAnyRelationNode(model.Node)
	AfterNode(model.Node)

	BeforeWay(model.Way)
	NotInAnyRelationWay(model.Way)
	AfterWay(model.Way)

	BeforeRelation(model.Relation)
	NotInAnyRelationRelation(model.Relation)
	AfterRelation(model.Relation)

	// Flush is called after each object has been fully routed, giving the
	// driver a chance to flush a buffered output sink (,
	// "possible output flush").
	Flush()
}

// NopHooks implements Hooks with no-ops. Embed it in a concrete Policy or
// driver type to pick and choose which hooks to override.
type NopHooks struct{}

func (NopHooks) BeforeNode(model.Node)                   {}
func (NopHooks) NotInAnyRelationNode(model.Node)         {}
func (NopHooks) AfterNode(model.Node)                    {}
func (NopHooks) BeforeWay(model.Way)                     {}
func (NopHooks) NotInAnyRelationWay(model.Way)           {}
func (NopHooks) AfterWay(model.Way)                      {}
func (NopHooks) BeforeRelation(model.Relation)           {}
func (NopHooks) NotInAnyRelationRelation(model.Relation) {}
func (NopHooks) AfterRelation(model.Relation)            {}
func (NopHooks) Flush()                                  {}
