// Package screens holds the state of the campaign screens independently of how they are rendered.
//
// Each screen owns its own store. Nothing is shared between screens and a store is not safe for concurrent use.
package screens

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/masks/internal/errors"
)

// ListScreen is the state of a list-plus-form screen: the fetched records, a filter, the expanded details,
// an error banner and a pending delete confirmation.
type ListScreen[T any] struct {
	items    []T
	id       func(T) string
	fields   func(T) []string
	filter   string
	expanded map[string]bool
	banner   string
	// pendingDelete is the id awaiting confirmation or empty.
	pendingDelete string
}

func newListScreen[T any](id func(T) string, fields func(T) []string) *ListScreen[T] {
	return &ListScreen[T]{
		items:    []T{},
		id:       id,
		fields:   fields,
		expanded: make(map[string]bool),
	}
}

// Refresh replaces the records with the result of fetch. A failed fetch keeps the previous records and raises
// the error banner.
func (s *ListScreen[T]) Refresh(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	items, err := fetch(ctx)
	if err != nil {
		s.SetError(err)
		return errors.Wrap(err, "refresh screen")
	}
	s.Load(items)
	return nil
}

// Load replaces the records and forgets expanded ids that are gone.
func (s *ListScreen[T]) Load(items []T) {
	if items == nil {
		items = []T{}
	}
	s.items = items
	present := make(map[string]bool, len(items))
	for _, item := range items {
		present[s.id(item)] = true
	}
	for id := range s.expanded {
		if !present[id] {
			delete(s.expanded, id)
		}
	}
	if !present[s.pendingDelete] {
		s.pendingDelete = ""
	}
}

func (s *ListScreen[T]) Items() []T {
	return s.items
}

func (s *ListScreen[T]) Get(id string) (T, bool) {
	for _, item := range s.items {
		if s.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Put replaces the record with the same id or appends it, e.g., after a create or an edit.
func (s *ListScreen[T]) Put(item T) {
	id := s.id(item)
	for i := range s.items {
		if s.id(s.items[i]) == id {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}

func (s *ListScreen[T]) remove(id string) {
	for i := range s.items {
		if s.id(s.items[i]) == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	delete(s.expanded, id)
}

func (s *ListScreen[T]) SetFilter(q string) {
	s.filter = strings.TrimSpace(q)
}

func (s *ListScreen[T]) Filter() string {
	return s.filter
}

// Visible returns the records with a searchable field containing the filter, ignoring case.
func (s *ListScreen[T]) Visible() []T {
	if s.filter == "" {
		return s.items
	}
	needle := strings.ToLower(s.filter)
	visible := make([]T, 0, len(s.items))
	for _, item := range s.items {
		for _, f := range s.fields(item) {
			if strings.Contains(strings.ToLower(f), needle) {
				visible = append(visible, item)
				break
			}
		}
	}
	return visible
}

// Toggle expands or collapses the detail of id and reports whether it is now expanded.
func (s *ListScreen[T]) Toggle(id string) bool {
	if s.expanded[id] {
		delete(s.expanded, id)
		return false
	}
	if _, ok := s.Get(id); !ok {
		return false
	}
	s.expanded[id] = true
	return true
}

func (s *ListScreen[T]) Expanded(id string) bool {
	return s.expanded[id]
}

// SetError raises the error banner with the message of err.
func (s *ListScreen[T]) SetError(err error) {
	if err == nil {
		return
	}
	s.banner = err.Error()
}

func (s *ListScreen[T]) Error() string {
	return s.banner
}

func (s *ListScreen[T]) DismissError() {
	s.banner = ""
}

// RequestDelete asks for a confirmation before deleting id.
func (s *ListScreen[T]) RequestDelete(id string) bool {
	if _, ok := s.Get(id); !ok {
		return false
	}
	s.pendingDelete = id
	return true
}

// PendingDelete returns the record awaiting a delete confirmation.
func (s *ListScreen[T]) PendingDelete() (T, bool) {
	if s.pendingDelete == "" {
		var zero T
		return zero, false
	}
	return s.Get(s.pendingDelete)
}

func (s *ListScreen[T]) CancelDelete() {
	s.pendingDelete = ""
}

// ConfirmDelete deletes the pending record with del and drops it from the list. A failed delete keeps the
// record, raises the error banner and clears the confirmation.
func (s *ListScreen[T]) ConfirmDelete(ctx context.Context, del func(context.Context, string) error) error {
	id := s.pendingDelete
	if id == "" {
		return errors.New("no delete pending")
	}
	s.pendingDelete = ""
	if err := del(ctx, id); err != nil {
		s.SetError(err)
		return errors.Wrap(err, "confirm delete", slog.String("id", id))
	}
	s.remove(id)
	return nil
}
