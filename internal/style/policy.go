package style

import "github.com/etresoft/libosmium/internal/model"

// Policy implements relations.Policy by applying a Config loaded from a
// style YAML file. It is declared without importing internal/relations so
// that the dependency only flows one way (relations is the core, style is
// a driver-level adapter); any type satisfying relations.Policy's method
// set — this one included — can be passed to relations.NewManager.
type Policy struct {
	relFilter *Filter
	members   *MemberConfig

	// OnComplete, if set, is invoked after every completed relation with
	// the relation's copy, which carries no resolved members. cmd/assemble
	// gathers resolved members through relations.Manager.OnComplete and
	// leaves this hook unset.
	OnComplete func(*model.Relation)
}

// NewPolicy builds a Policy from cfg. A nil cfg behaves like
// DefaultConfig(): every relation and every member is selected.
func NewPolicy(cfg *Config) *Policy {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Policy{relFilter: NewFilter(cfg.Relations), members: cfg.Members}
}

// SelectRelation implements relations.Policy.
func (p *Policy) SelectRelation(rel *model.Relation) bool {
	return p.relFilter.Match(rel.Tags)
}

// SelectMember implements relations.Policy.
func (p *Policy) SelectMember(rel *model.Relation, member model.Member, position int) bool {
	if p.members == nil {
		return true
	}
	if len(p.members.Kinds) > 0 && !contains(p.members.Kinds, kindName(member.Kind)) {
		return false
	}
	if len(p.members.IncludeRoles) > 0 && !contains(p.members.IncludeRoles, member.Role) {
		return false
	}
	return true
}

// CompleteRelation implements relations.Policy.
func (p *Policy) CompleteRelation(rel *model.Relation) {
	if p.OnComplete != nil {
		p.OnComplete(rel)
	}
}
