package vm

import (
	"fmt"

	"github.com/birl-lang/birl/internal/diagnostics"
)

// TextStore interns strings under numeric ids. Ids are never reused; an
// entry disappears only when it is taken.
type TextStore struct {
	texts map[uint64]string
	next  uint64
}

func NewTextStore() *TextStore {
	return &TextStore{texts: make(map[uint64]string)}
}

// Add stores s and returns its new id.
func (ts *TextStore) Add(s string) uint64 {
	id := ts.next
	ts.next++
	ts.texts[id] = s
	return id
}

// Get returns the string stored under id.
func (ts *TextStore) Get(id uint64) (string, error) {
	s, ok := ts.texts[id]
	if !ok {
		return "", ts.miss(id)
	}
	return s, nil
}

// Set replaces the string stored under id.
func (ts *TextStore) Set(id uint64, s string) error {
	if _, ok := ts.texts[id]; !ok {
		return ts.miss(id)
	}
	ts.texts[id] = s
	return nil
}

// Append appends s to the string stored under id.
func (ts *TextStore) Append(id uint64, s string) error {
	cur, ok := ts.texts[id]
	if !ok {
		return ts.miss(id)
	}
	ts.texts[id] = cur + s
	return nil
}

// Take removes the entry and returns its string.
func (ts *TextStore) Take(id uint64) (string, error) {
	s, ok := ts.texts[id]
	if !ok {
		return "", ts.miss(id)
	}
	delete(ts.texts, id)
	return s, nil
}

// Len returns the number of live entries.
func (ts *TextStore) Len() int { return len(ts.texts) }

func (ts *TextStore) miss(id uint64) error {
	return fmt.Errorf("%w: text id %d", diagnostics.ErrStorageMiss, id)
}
