// Package memory provides the reference in-process implementation of the
// repository contracts. Every call is atomic under a per-repository lock and
// returns copies, so callers cannot mutate stored rows.
package memory

import (
	"slices"
	"sync"
)

// table is an insertion-ordered map of rows keyed by id
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

// get returns a copy of the row, or nil. Caller holds mu.
func (t *table[T]) get(id string) *T {
	row, ok := t.rows[id]
	if !ok {
		return nil
	}
	c := *row
	return &c
}

// put inserts or replaces a row. Caller holds mu.
func (t *table[T]) put(id string, row *T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	c := *row
	t.rows[id] = &c
}

// remove deletes a row and reports whether it existed. Caller holds mu.
func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	if i := slices.Index(t.order, id); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	return true
}

// find returns copies of matching rows in insertion order. Caller holds mu.
func (t *table[T]) find(match func(*T) bool) []*T {
	out := make([]*T, 0)
	for _, id := range t.order {
		row := t.rows[id]
		if match == nil || match(row) {
			c := *row
			out = append(out, &c)
		}
	}
	return out
}

// first returns a copy of the first matching row, or nil. Caller holds mu.
func (t *table[T]) first(match func(*T) bool) *T {
	for _, id := range t.order {
		row := t.rows[id]
		if match(row) {
			c := *row
			return &c
		}
	}
	return nil
}
