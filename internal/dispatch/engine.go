// Package dispatch holds the core domain logic: the route status state
// machine, the duplicate & identity resolver, the parent-route consolidation
// engine and the cross-view aggregator. Everything is written once against
// the store interface and never touches a concrete backend.
package dispatch

import (
	"errors"
	"fmt"

	"hamilton_tms/internal/store"
)

// DuplicateIdentityError is returned when creating a student whose name
// (case-insensitive) already exists. The message names the conflicting
// student's class and is surfaced to the end user verbatim.
type DuplicateIdentityError struct {
	Name  string
	Class string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("Student '%s' already exists in class '%s'. Cannot create duplicate.", e.Name, e.Class)
}

// ErrPickupAreaRequired is returned when a parent-collection assignment
// carries no pickup area. Callers must re-prompt, never default one.
var ErrPickupAreaRequired = errors.New("a pickup location is required for parent collection")

// ErrInvalidStatus is returned for a status outside the three-state cycle.
var ErrInvalidStatus = errors.New("invalid route status")

// Engine orchestrates cross-entity operations on top of an entity store.
// It is constructed once at process start and handed to every handler; it
// holds no state of its own.
type Engine struct {
	store store.Store
}

// NewEngine builds an engine over the given store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Store exposes the underlying entity store for plain CRUD paths that need
// no orchestration.
func (e *Engine) Store() store.Store {
	return e.store
}
