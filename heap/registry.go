package heap

// Registry owns the local and permanent spaces of one heap instance. Spaces
// are kept in insertion order; callers that need newest-first (the shrink
// pass) iterate the Local slice backwards.
//
// Registry is not safe for concurrent mutation. The collector runs
// stop-the-world, so this is never exercised concurrently in practice.
type Registry struct {
	// Budget bounds the total size of local spaces in words. Zero means
	// unlimited. Requests that would exceed the budget are refused, which is
	// what ultimately drives the sizing policy's halving retry loop.
	Budget Words

	local     []*Space
	permanent []*PermanentSpace
	nextID    int
}

// NewRegistry returns a registry with the given word budget (0 = unlimited).
func NewRegistry(budget Words) *Registry {
	return &Registry{Budget: budget}
}

// NewLocalSpace creates a new empty local space of exactly words words, or
// returns (nil, false) if the budget does not allow it. A granted space is
// always the full requested size; callers wanting "as much as possible"
// retry with smaller requests.
func (r *Registry) NewLocalSpace(words Words, kind Kind) (*Space, bool) {
	if words == 0 {
		return nil, false
	}
	if r.Budget != 0 && r.TotalLocalWords()+words > r.Budget {
		return nil, false
	}
	s := newSpace(r.nextID, kind, words)
	r.nextID++
	r.local = append(r.local, s)
	return s, true
}

// DeleteLocalSpace removes the space from the registry. It reports whether
// the space was registered. Emptiness is the caller's policy, not enforced
// here.
func (r *Registry) DeleteLocalSpace(s *Space) bool {
	for i, candidate := range r.local {
		if candidate == s {
			r.local = append(r.local[:i], r.local[i+1:]...)
			return true
		}
	}
	return false
}

// AddPermanent registers a permanent space of the given size.
func (r *Registry) AddPermanent(words Words) *PermanentSpace {
	p := &PermanentSpace{Top: words}
	p.ResetWeakBounds()
	r.permanent = append(r.permanent, p)
	return p
}

// Local returns the local spaces in insertion order. The returned slice is
// the registry's own; callers must not mutate it.
func (r *Registry) Local() []*Space { return r.local }

// Permanent returns the permanent spaces in insertion order.
func (r *Registry) Permanent() []*PermanentSpace { return r.permanent }

// OfKind returns the local spaces of the given kind, in insertion order.
func (r *Registry) OfKind(kind Kind) []*Space {
	var out []*Space
	for _, s := range r.local {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// TotalLocalWords returns the combined size of all local spaces.
func (r *Registry) TotalLocalWords() Words {
	var total Words
	for _, s := range r.local {
		total += s.Top
	}
	return total
}

// FreeWords returns the combined free space across local spaces of the kind.
func (r *Registry) FreeWords(kind Kind) Words {
	var free Words
	for _, s := range r.local {
		if s.Kind == kind {
			free += s.Free()
		}
	}
	return free
}
