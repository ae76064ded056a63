package substance

import (
	"fmt"

	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// Registry is the in-memory store of every Substance of a run.  It keeps
// insertion order for reporting and indexes entities by truncated CAS and EC
// identity.  A Registry has a single writer; it is not safe for concurrent
// use.
type Registry struct {
	items []*Substance
	byCAS map[Key][]*Substance
	byEC  map[Key][]*Substance
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byCAS: make(map[Key][]*Substance),
		byEC:  make(map[Key][]*Substance),
	}
}

// Len returns the number of substances.
func (r *Registry) Len() int { return len(r.items) }

// All returns the substances in insertion order.  The slice is a copy; the
// substances are not.
func (r *Registry) All() []*Substance {
	out := make([]*Substance, len(r.items))
	copy(out, r.items)
	return out
}

// Add inserts s unless an entity with the same CAS or EC identity already
// exists, in which case it returns ErrCodeDuplicateSubstance and the caller
// is expected to Merge instead.
func (r *Registry) Add(s *Substance) error {
	if existing := r.match(s); existing != nil {
		return errors.New(errors.ErrCodeDuplicateSubstance, "substance already registered").
			WithDetail(describe(existing))
	}
	r.insert(s)
	return nil
}

// Upsert merges s into the entity sharing its identity, or inserts it when
// there is none.  It returns the entity that now holds s's data and whether
// s was inserted.  When the merge conflicts, s is kept as a distinct entity
// and the ErrCodeConflictingMerge error is returned alongside it.
func (r *Registry) Upsert(s *Substance) (*Substance, bool, error) {
	existing := r.match(s)
	if existing == nil {
		r.insert(s)
		return s, true, nil
	}
	if err := r.Merge(existing, s); err != nil {
		r.insert(s)
		return s, true, err
	}
	return existing, false, nil
}

// Find returns the first substance whose CAS equals c, or nil.
func (r *Registry) Find(c CAS) *Substance {
	if m := r.byCAS[c.Key()]; len(m) > 0 {
		return m[0]
	}
	return nil
}

// FindEC returns the first substance whose EC equals e, or nil.
func (r *Registry) FindEC(e EC) *Substance {
	if m := r.byEC[e.Key()]; len(m) > 0 {
		return m[0]
	}
	return nil
}

// ForEachMatch applies fn to every substance whose CAS equals c and returns
// the number of matches.  Zero matches is not an error.
func (r *Registry) ForEachMatch(c CAS, fn func(*Substance)) int {
	return each(r.byCAS[c.Key()], fn)
}

// ForEachMatchEC applies fn to every substance whose EC equals e.
func (r *Registry) ForEachMatchEC(e EC, fn func(*Substance)) int {
	return each(r.byEC[e.Key()], fn)
}

func each(list []*Substance, fn func(*Substance)) int {
	// fn may merge identifiers and grow the index; iterate a snapshot.
	snapshot := append([]*Substance(nil), list...)
	for _, s := range snapshot {
		fn(s)
	}
	return len(snapshot)
}

// Merge folds incoming into existing.  It fails with ErrCodeConflictingMerge,
// leaving both untouched, when both carry a CAS (or both an EC) and the two
// differ.  Otherwise existing adopts whichever identifier it lacks, gains
// incoming's names through AddName, and absorbs incoming's attributes.
func (r *Registry) Merge(existing, incoming *Substance) error {
	if existing == incoming {
		return nil
	}
	if existing.CAS != nil && incoming.CAS != nil && !existing.CAS.Equal(*incoming.CAS) {
		return errors.ConflictingMerge("refusing to merge substances with different CAS numbers").
			WithDetail(fmt.Sprintf("%s <- %s", describe(existing), describe(incoming)))
	}
	if existing.EC != nil && incoming.EC != nil && !existing.EC.Equal(*incoming.EC) {
		return errors.ConflictingMerge("refusing to merge substances with different EC numbers").
			WithDetail(fmt.Sprintf("%s <- %s", describe(existing), describe(incoming)))
	}

	if existing.CAS == nil && incoming.CAS != nil {
		c := *incoming.CAS
		existing.CAS = &c
		if r.contains(existing) {
			r.byCAS[c.Key()] = append(r.byCAS[c.Key()], existing)
		}
	}
	if existing.EC == nil && incoming.EC != nil {
		e := *incoming.EC
		existing.EC = &e
		if r.contains(existing) {
			r.byEC[e.Key()] = append(r.byEC[e.Key()], existing)
		}
	}

	AddName(incoming.Name, existing)
	for _, n := range incoming.OtherNames {
		AddName(n, existing)
	}
	existing.Attributes.mergeFrom(incoming.Attributes)
	return nil
}

func (r *Registry) match(s *Substance) *Substance {
	if s.CAS != nil {
		if m := r.Find(*s.CAS); m != nil {
			return m
		}
	}
	if s.EC != nil {
		if m := r.FindEC(*s.EC); m != nil {
			return m
		}
	}
	return nil
}

func (r *Registry) insert(s *Substance) {
	r.items = append(r.items, s)
	if s.CAS != nil {
		r.byCAS[s.CAS.Key()] = append(r.byCAS[s.CAS.Key()], s)
	}
	if s.EC != nil {
		r.byEC[s.EC.Key()] = append(r.byEC[s.EC.Key()], s)
	}
}

func (r *Registry) contains(s *Substance) bool {
	for _, it := range r.items {
		if it == s {
			return true
		}
	}
	return false
}

func describe(s *Substance) string {
	id := s.CASString()
	if id == "" && s.EC != nil {
		id = "EC " + s.EC.String()
	}
	if id == "" {
		id = "no identifier"
	}
	return fmt.Sprintf("%q (%s)", s.Name, id)
}

//Personal.AI order the ending
