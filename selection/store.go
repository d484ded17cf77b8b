// Package selection keeps the set of selected region labels.
package selection

import (
	"github.com/samber/lo"
)

// Store is a set of labels that remembers insertion order. It belongs to the
// goroutine driving the overlay and is not safe for concurrent use. The zero
// value is an empty store.
type Store struct {
	labels []string
}

// NewStore returns a store holding labels, duplicates and empties dropped.
func NewStore(labels ...string) *Store {
	return &Store{labels: lo.Uniq(lo.Compact(labels))}
}

// Toggle adds lbl when absent and removes it when present. It reports whether
// lbl is selected afterwards. The empty label is never stored.
func (s *Store) Toggle(lbl string) bool {
	if lbl == "" {
		return false
	}
	if lo.Contains(s.labels, lbl) {
		s.labels = lo.Without(s.labels, lbl)
		return false
	}
	s.labels = append(s.labels, lbl)
	return true
}

// Clear empties the store.
func (s *Store) Clear() { s.labels = nil }

// Contains reports whether lbl is selected.
func (s *Store) Contains(lbl string) bool { return lo.Contains(s.labels, lbl) }

// List returns a copy of the selected labels in the order they were added.
func (s *Store) List() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Len is the number of selected labels.
func (s *Store) Len() int { return len(s.labels) }
