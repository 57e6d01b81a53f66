package examtype

// Registry of exam types keyed by id. The first registered entry is the
// fallback for empty or unknown ids.
type registry struct {
	order []string
	defs  map[string]Definition
}

var types = newRegistry(builtin)

func newRegistry(defs []Definition) *registry {
	r := &registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := Validate(d); err != nil {
			panic("examtype: " + err.Error())
		}
		if _, dup := r.defs[d.ID]; dup {
			panic("examtype: duplicate id " + d.ID)
		}
		r.order = append(r.order, d.ID)
		r.defs[d.ID] = d.clone()
	}
	if len(r.order) == 0 {
		panic("examtype: empty registry")
	}
	return r
}

func (r *registry) list() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id].clone())
	}
	return out
}

func (r *registry) has(id string) bool {
	_, ok := r.defs[id]
	return ok
}

func (r *registry) resolve(id string) Definition {
	if d, ok := r.defs[id]; ok {
		return d.clone()
	}
	return r.defs[r.order[0]].clone()
}

func (r *registry) resolvePausePolicy(id string) PausePolicy {
	d := r.resolve(id)
	if d.PausePolicy == nil {
		return DisabledPausePolicy()
	}
	return *d.PausePolicy
}

// List returns copies of every registered exam type in registration order.
func List() []Definition { return types.list() }

// Has reports whether id is a registered exam type.
// Resolve never fails, so callers wanting strict validation check Has first.
func Has(id string) bool { return types.has(id) }

// Resolve returns the exam type for id, or the first registered type when id
// is empty or unknown.
func Resolve(id string) Definition { return types.resolve(id) }

// ResolvePausePolicy returns the pause policy of Resolve(id), or a disabled
// policy when the type has none.
func ResolvePausePolicy(id string) PausePolicy { return types.resolvePausePolicy(id) }

// Default is the fallback exam type.
func Default() Definition { return types.resolve("") }
