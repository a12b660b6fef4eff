package policy

import (
	"testing"

	"github.com/etresoft/libosmium/internal/model"
)

func TestLuaPolicySelectRelationAndMember(t *testing.T) {
	p := NewLua()
	defer p.Close()

	script := `
function select_relation(id, tags)
  return tags["type"] == "multipolygon"
end

function select_member(relation_id, kind, ref, role, position)
  return kind == "way"
end
`
	if err := p.LoadString(script); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	mp := &model.Relation{ID: 1, Tags: map[string]string{"type": "multipolygon"}}
	if !p.SelectRelation(mp) {
		t.Fatalf("expected multipolygon relation to be selected")
	}

	other := &model.Relation{ID: 2, Tags: map[string]string{"type": "route"}}
	if p.SelectRelation(other) {
		t.Fatalf("expected route relation to be rejected")
	}

	if !p.SelectMember(mp, model.Member{Kind: model.KindWay, Ref: 10, Role: "outer"}, 0) {
		t.Fatalf("expected way member to be selected")
	}
	if p.SelectMember(mp, model.Member{Kind: model.KindNode, Ref: 20, Role: "label"}, 1) {
		t.Fatalf("expected node member to be rejected")
	}
}

func TestLuaPolicyDefaultsToSelectAll(t *testing.T) {
	p := NewLua()
	defer p.Close()

	if err := p.LoadString(`-- no hooks defined`); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	rel := &model.Relation{ID: 1}
	if !p.SelectRelation(rel) {
		t.Fatalf("expected default policy to select every relation")
	}
	if !p.SelectMember(rel, model.Member{Kind: model.KindWay}, 0) {
		t.Fatalf("expected default policy to select every member")
	}
}

func TestLuaPolicyCompleteRelationInvokesOnComplete(t *testing.T) {
	p := NewLua()
	defer p.Close()
	if err := p.LoadString(`-- no hooks defined`); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	var got int64
	p.OnComplete = func(rel *model.Relation) { got = rel.ID }
	p.CompleteRelation(&model.Relation{ID: 42})

	if got != 42 {
		t.Fatalf("OnComplete did not fire with the right relation, got %d", got)
	}
}
