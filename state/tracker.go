package state

// ValueSet is the set of values already known to be in use for one
// attribute: the seeded values from existing accounts plus every value
// emitted during the current run.
type ValueSet struct {
	values map[string]struct{}
}

// NewValueSet creates a value set seeded with the given values. Empty
// values are ignored.
func NewValueSet(values ...string) *ValueSet {
	s := &ValueSet{values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.Record(v)
	}
	return s
}

// Contains reports whether the value has already been reserved.
func (s *ValueSet) Contains(value string) bool {
	if s == nil {
		return false
	}
	_, ok := s.values[value]
	return ok
}

// Record reserves a value. Empty values are never recorded: an absent
// computed value is not a reservation.
func (s *ValueSet) Record(value string) {
	if s == nil || value == "" {
		return
	}
	s.values[value] = struct{}{}
}

// Len returns the number of reserved values.
func (s *ValueSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Tracker maps attribute names to their value sets. Attributes without a
// set (normal and counter kinds, or unique kinds on the read path) resolve
// to nil, which the engine treats as "no uniqueness context".
type Tracker struct {
	sets map[string]*ValueSet
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sets: make(map[string]*ValueSet)}
}

// Seed initializes (or overwrites) the value set for an attribute.
func (t *Tracker) Seed(name string, values []string) {
	t.sets[name] = NewValueSet(values...)
}

// Reset clears the attribute's set to empty, discarding any pre-collected
// seed. Used when a unique attribute is marked refresh: a full refresh
// starts uniqueness fresh too.
func (t *Tracker) Reset(name string) {
	t.sets[name] = NewValueSet()
}

// Get returns the value set for the attribute, or nil if none was seeded.
func (t *Tracker) Get(name string) *ValueSet {
	if t == nil {
		return nil
	}
	return t.sets[name]
}
