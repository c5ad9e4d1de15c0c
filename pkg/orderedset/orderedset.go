// Package orderedset provides a set that remembers insertion order.
//
// It is shared between the order books, where it groups the ids of all
// orders resting at one price level, and the per-trader registry of active
// order ids. Membership tests, insertion and removal are O(1); Values
// enumerates elements in the order they were first added.
package orderedset

import "container/list"

// Set is an insertion-ordered set of comparable values.
//
// The zero value is not usable; create instances with New.
type Set[T comparable] struct {
	elems map[T]*list.Element
	order *list.List
}

// New creates an empty Set.
func New[T comparable]() *Set[T] {
	return &Set[T]{
		elems: make(map[T]*list.Element),
		order: list.New(),
	}
}

// Add inserts v into the set. It returns true if v was newly inserted and
// false if it was already a member; adding an existing value is a no-op.
func (s *Set[T]) Add(v T) bool {
	if _, ok := s.elems[v]; ok {
		return false
	}

	s.elems[v] = s.order.PushBack(v)
	return true
}

// Remove deletes v from the set. It returns whether v was a member.
func (s *Set[T]) Remove(v T) bool {
	elem, ok := s.elems[v]
	if !ok {
		return false
	}

	delete(s.elems, v)
	s.order.Remove(elem)
	return true
}

// Contains reports whether v is a member of the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.elems[v]
	return ok
}

// Len returns the number of members.
func (s *Set[T]) Len() int {
	return len(s.elems)
}

// Front returns the oldest member of the set. The second return value is
// false if the set is empty.
func (s *Set[T]) Front() (T, bool) {
	front := s.order.Front()
	if front == nil {
		var zero T
		return zero, false
	}
	return front.Value.(T), true
}

// Each calls fn for every member in insertion order, stopping early if fn
// returns false.
func (s *Set[T]) Each(fn func(v T) bool) {
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if !fn(elem.Value.(T)) {
			return
		}
	}
}

// Values returns the members in insertion order. The returned slice is a
// copy and may be retained by the caller.
func (s *Set[T]) Values() []T {
	values := make([]T, 0, len(s.elems))
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		values = append(values, elem.Value.(T))
	}
	return values
}
