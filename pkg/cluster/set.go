package cluster

import "slices"

// Set is an unordered collection of node IDs. It is the element type of the
// candidate list and of the final cluster collection.
type Set map[int64]struct{}

// NewSet creates a set containing the given IDs.
func NewSet(ids ...int64) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s Set) Add(id int64) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s Set) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s Set) Len() int { return len(s) }

// Subtract removes every ID of other from the set in place.
func (s Set) Subtract(other Set) {
	for id := range other {
		delete(s, id)
	}
}

// IDs returns the set's members in ascending order.
func (s Set) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
