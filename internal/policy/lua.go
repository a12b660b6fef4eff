// Package policy implements a Lua-scriptable relations.Policy:
// select_relation, select_member and complete_relation are looked up as
// globals in a user-supplied Lua script, mirroring the object-to-Lua
// conversion pattern of a Lua-embedding runtime's table API without any
// of its table-definition machinery — relation/member selection is the
// only hook left open for scripting, not output schema.
package policy

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/etresoft/libosmium/internal/model"
)

// Lua implements relations.Policy by delegating to functions defined in
// a loaded script. Any of the three functions may be omitted from the
// script; when omitted, the corresponding hook defaults to "select
// everything" for select_relation/select_member, and to a no-op for
// complete_relation (OnComplete still fires).
type Lua struct {
	L *lua.LState

	// OnComplete, if set, runs after the script's own complete_relation
	// (if any) with the completed relation's copy, which carries no
	// resolved members. cmd/assemble gathers resolved members through
	// relations.Manager.OnComplete and leaves this hook unset.
	OnComplete func(*model.Relation)

	selectRelationFn lua.LValue
	selectMemberFn   lua.LValue
	completeFn       lua.LValue
}

// NewLua creates an empty Lua policy. Call LoadFile or LoadString before
// using it.
func NewLua() *Lua {
	return &Lua{L: lua.NewState(lua.Options{SkipOpenLibs: false})}
}

// Close releases the underlying Lua state.
func (p *Lua) Close() {
	p.L.Close()
}

// LoadFile loads and executes a Lua policy script, then resolves its
// select_relation/select_member/complete_relation globals.
func (p *Lua) LoadFile(path string) error {
	if err := p.L.DoFile(path); err != nil {
		return fmt.Errorf("policy: failed to load %s: %w", path, err)
	}
	p.bindGlobals()
	return nil
}

// LoadString is LoadFile's in-memory counterpart, used by tests.
func (p *Lua) LoadString(code string) error {
	if err := p.L.DoString(code); err != nil {
		return fmt.Errorf("policy: failed to load script: %w", err)
	}
	p.bindGlobals()
	return nil
}

func (p *Lua) bindGlobals() {
	p.selectRelationFn = p.L.GetGlobal("select_relation")
	p.selectMemberFn = p.L.GetGlobal("select_member")
	p.completeFn = p.L.GetGlobal("complete_relation")
}

func isCallable(v lua.LValue) bool {
	return v != nil && v.Type() == lua.LTFunction
}

func tagsTable(L *lua.LState, tags map[string]string) *lua.LTable {
	t := L.NewTable()
	for k, v := range tags {
		t.RawSetString(k, lua.LString(v))
	}
	return t
}

// SelectRelation implements relations.Policy.
func (p *Lua) SelectRelation(rel *model.Relation) bool {
	if !isCallable(p.selectRelationFn) {
		return true
	}
	L := p.L
	L.Push(p.selectRelationFn)
	L.Push(lua.LNumber(rel.ID))
	L.Push(tagsTable(L, rel.Tags))
	if err := L.PCall(2, 1, nil); err != nil {
		return false
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret)
}

// SelectMember implements relations.Policy.
func (p *Lua) SelectMember(rel *model.Relation, member model.Member, position int) bool {
	if !isCallable(p.selectMemberFn) {
		return true
	}
	L := p.L
	L.Push(p.selectMemberFn)
	L.Push(lua.LNumber(rel.ID))
	L.Push(lua.LString(member.Kind.String()))
	L.Push(lua.LNumber(member.Ref))
	L.Push(lua.LString(member.Role))
	L.Push(lua.LNumber(position))
	if err := L.PCall(5, 1, nil); err != nil {
		return false
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret)
}

// CompleteRelation implements relations.Policy.
func (p *Lua) CompleteRelation(rel *model.Relation) {
	if isCallable(p.completeFn) {
		L := p.L
		L.Push(p.completeFn)
		L.Push(lua.LNumber(rel.ID))
		L.Push(tagsTable(L, rel.Tags))
		_ = L.PCall(2, 0, nil)
	}
	if p.OnComplete != nil {
		p.OnComplete(rel)
	}
}
