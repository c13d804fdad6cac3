// Package collision tracks name-to-hash mappings and flags when two
// different names hash to the same value.
package collision

import "github.com/mf4kit/mf4kit/errs"

// Tracker tracks names and detects hash collisions while building a
// hash-indexed lookup table.
type Tracker struct {
	names        map[uint64]string // hash -> name, for collision detection
	namesList    []string          // ordered list, insertion order
	hasCollision bool
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:     make(map[uint64]string),
		namesList: make([]string, 0),
	}
}

// Track records name under hash. It returns errs.ErrDuplicateMessageName if
// this exact name was already tracked; a different name landing on the same
// hash sets HasCollision() without returning an error, since both names
// still need to be held in the index.
func (t *Tracker) Track(name string, hash uint64) error {
	if existing, ok := t.names[hash]; ok {
		if existing == name {
			return errs.ErrDuplicateMessageName
		}

		t.hasCollision = true
	}

	t.names[hash] = name
	t.namesList = append(t.namesList, name)

	return nil
}

// HasCollision reports whether two distinct names have landed on the same
// hash since the tracker was created or last Reset.
func (t *Tracker) HasCollision() bool { return t.hasCollision }

// Names returns the tracked names in the order Track was called.
func (t *Tracker) Names() []string { return t.namesList }

// Count returns the number of tracked names.
func (t *Tracker) Count() int { return len(t.namesList) }

// Reset clears all tracked state, preserving the underlying slice capacity.
func (t *Tracker) Reset() {
	for k := range t.names {
		delete(t.names, k)
	}

	t.namesList = t.namesList[:0]
	t.hasCollision = false
}
