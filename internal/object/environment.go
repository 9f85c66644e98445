package object

import (
	"sort"

	"quill/internal/diag"
)

type Binding struct {
	Value   Object
	Mutable bool
}

// NamedBinding is a binding as seen from the innermost frame.
type NamedBinding struct {
	Name  string
	Depth int
	Binding
}

type frame struct {
	store map[string]*Binding
}

// Environment is the scope stack. frames[0] is the global frame and lives as
// long as the environment; every other frame is pushed and popped in strict
// LIFO order by the statement that introduced it.
type Environment struct {
	frames []frame
}

func NewEnvironment() *Environment {
	env := &Environment{}
	env.Push()
	return env
}

func (e *Environment) Push() {
	e.frames = append(e.frames, frame{store: map[string]*Binding{}})
}

func (e *Environment) Pop() {
	if len(e.frames) <= 1 {
		panic("object: pop of global scope frame")
	}
	e.frames[len(e.frames)-1] = frame{}
	e.frames = e.frames[:len(e.frames)-1]
}

// Depth is the number of active frames, the global frame included.
func (e *Environment) Depth() int { return len(e.frames) }

func (e *Environment) innermost() frame { return e.frames[len(e.frames)-1] }

// Declare binds name in the innermost frame. Shadowing a binding of an outer
// frame is allowed; a second declaration in the same frame is not.
func (e *Environment) Declare(name string, val Object, mutable bool) error {
	fr := e.innermost()
	if _, exists := fr.store[name]; exists {
		return diag.NewError(diag.Redeclaration, name)
	}
	fr.store[name] = &Binding{Value: val, Mutable: mutable}
	return nil
}

func (e *Environment) resolve(name string) *Binding {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if b, ok := e.frames[i].store[name]; ok {
			return b
		}
	}
	return nil
}

func (e *Environment) Lookup(name string) (Object, error) {
	b := e.resolve(name)
	if b == nil {
		return nil, diag.NewError(diag.UndefinedVariable, name)
	}
	return b.Value, nil
}

// Resolve returns a copy of the binding name resolves to.
func (e *Environment) Resolve(name string) (Binding, error) {
	b := e.resolve(name)
	if b == nil {
		return Binding{}, diag.NewError(diag.UndefinedVariable, name)
	}
	return *b, nil
}

// Assign replaces the value of the binding that name resolves to, in the
// frame that owns it.
func (e *Environment) Assign(name string, val Object) error {
	b := e.resolve(name)
	if b == nil {
		return diag.NewError(diag.UndefinedVariable, name)
	}
	if !b.Mutable {
		return diag.NewError(diag.ImmutableAssignment, name)
	}
	b.Value = val
	return nil
}

// Bindings lists every visible binding sorted by name. Shadowed bindings of
// outer frames are omitted.
func (e *Environment) Bindings() []NamedBinding {
	seen := map[string]bool{}
	var out []NamedBinding
	for i := len(e.frames) - 1; i >= 0; i-- {
		for name, b := range e.frames[i].store {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, NamedBinding{Name: name, Depth: i, Binding: *b})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
