package relations

import (
	"testing"

	"github.com/etresoft/libosmium/internal/model"
)

type testPolicy struct {
	NopHooks
	completed []int64
	selectRel func(*model.Relation) bool
}

func (p *testPolicy) SelectRelation(rel *model.Relation) bool {
	if p.selectRel != nil {
		return p.selectRel(rel)
	}
	return true
}

func (p *testPolicy) SelectMember(rel *model.Relation, member model.Member, position int) bool {
	return member.Kind == model.KindWay
}

func (p *testPolicy) CompleteRelation(rel *model.Relation) {
	p.completed = append(p.completed, rel.ID)
}

func TestManagerTwoPassCompletion(t *testing.T) {
	policy := &testPolicy{}
	mgr := NewManager(policy, nil)

	rel := model.Relation{
		ID: 100,
		Members: []model.Member{
			{Kind: model.KindWay, Ref: 10, Role: "outer"},
			{Kind: model.KindWay, Ref: 11, Role: "inner"},
			{Kind: model.KindNode, Ref: 999, Role: "label"}, // not selected
		},
	}

	if err := mgr.Pass1Relation(rel); err != nil {
		t.Fatalf("Pass1Relation: %v", err)
	}
	mgr.PreparePass2()

	if err := mgr.Pass2Way(model.Way{ID: 10}); err != nil {
		t.Fatalf("Pass2Way(10): %v", err)
	}
	if len(policy.completed) != 0 {
		t.Fatalf("relation completed too early after 1/2 members: %v", policy.completed)
	}

	if err := mgr.Pass2Way(model.Way{ID: 11}); err != nil {
		t.Fatalf("Pass2Way(11): %v", err)
	}
	if len(policy.completed) != 1 || policy.completed[0] != 100 {
		t.Fatalf("expected exactly one completion for relation 100, got %v", policy.completed)
	}
}

func TestManagerSkipsUnselectedRelation(t *testing.T) {
	policy := &testPolicy{selectRel: func(*model.Relation) bool { return false }}
	mgr := NewManager(policy, nil)

	if err := mgr.Pass1Relation(model.Relation{ID: 5, Members: []model.Member{{Kind: model.KindWay, Ref: 1}}}); err != nil {
		t.Fatalf("Pass1Relation: %v", err)
	}
	mgr.PreparePass2()

	if err := mgr.Pass2Way(model.Way{ID: 1}); err != nil {
		t.Fatalf("Pass2Way: %v", err)
	}
	if len(policy.completed) != 0 {
		t.Fatalf("unselected relation must never complete, got %v", policy.completed)
	}
}

func TestOrderCheckRejectsOutOfOrder(t *testing.T) {
	var oc OrderCheck
	if err := oc.Check(model.KindNode, 1); err != nil {
		t.Fatalf("first check should succeed: %v", err)
	}
	if err := oc.Check(model.KindNode, 1); err == nil {
		t.Fatalf("expected error for repeated id")
	}
	if err := oc.Check(model.KindNode, 0); err == nil {
		t.Fatalf("expected error for descending id")
	}
	if err := oc.Check(model.KindNode, 2); err != nil {
		t.Fatalf("ascending id within kind should succeed: %v", err)
	}
	if err := oc.Check(model.KindWay, 1); err != nil {
		t.Fatalf("moving to the next kind should succeed: %v", err)
	}
	if err := oc.Check(model.KindNode, 3); err == nil {
		t.Fatalf("expected error for regressing to an earlier kind")
	}
}

func TestMembersDatabasePrepareForLookupIdempotent(t *testing.T) {
	rdb := NewRelationsDatabase()
	mdb := NewMembersDatabase[model.Way](model.KindWay, rdb)
	h := rdb.Add(model.Relation{ID: 1})
	mdb.Track(h, 10, 0)
	mdb.Track(h, 5, 0)

	mdb.PrepareForLookup()
	first := append([]trackEntry{}, mdb.entries...)
	mdb.PrepareForLookup()
	second := mdb.entries

	if len(first) != len(second) {
		t.Fatalf("entry count changed across repeated PrepareForLookup calls")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("entry order changed across repeated PrepareForLookup calls")
		}
	}
}
