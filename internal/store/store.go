// Package store abstracts persistence for schools, routes, students,
// providers and areas. Two interchangeable backends implement it: a GORM
// database store and a flat-file JSON store. All higher layers are written
// against this interface and must not care which backend is active.
package store

import (
	"errors"

	"hamilton_tms/internal/models"
)

// ErrNotFound is the sentinel returned by lookups for missing records.
// Callers convert it to a user-facing message at the boundary; the
// consolidation engine treats a missing synthetic route as "not yet
// created", not an error.
var ErrNotFound = errors.New("record not found")

// Store is the entity store consumed by the dispatch core.
//
// Persistence discipline (substituting for transactional isolation): every
// mutating call is followed by Commit before the caller returns, and readers
// that must see other processes' writes call Reload first. Concurrent
// writers reconcile as last-write-wins.
type Store interface {
	GetAllSchools() ([]models.School, error)
	GetSchool(id string) (*models.School, error)
	CreateSchool(s *models.School) error
	UpdateSchool(s *models.School) error
	DeleteSchool(id string) error

	GetAllProviders() ([]models.Provider, error)
	GetProvider(id string) (*models.Provider, error)
	CreateProvider(p *models.Provider) error
	UpdateProvider(p *models.Provider) error
	DeleteProvider(id string) error

	GetAllAreas() ([]models.Area, error)
	GetArea(id string) (*models.Area, error)
	CreateArea(a *models.Area) error
	UpdateArea(a *models.Area) error
	DeleteArea(id string) error

	GetAllRoutes() ([]models.Route, error)
	GetRoute(id string) (*models.Route, error)
	CreateRoute(r *models.Route) error
	UpdateRoute(r *models.Route) error
	DeleteRoute(id string) error

	GetAllStudents() ([]models.Student, error)
	GetStudent(id string) (*models.Student, error)
	CreateStudent(st *models.Student) error
	UpdateStudent(st *models.Student) error
	DeleteStudent(id string) error

	// StudentsForRoute returns a route's direct membership: students whose
	// RouteID points at it. The database backend derives it from the foreign
	// key; the file backend reads its stored student_ids list.
	StudentsForRoute(routeID string) ([]models.Student, error)

	// AssignStudentToRoute vacates the student's previous route (splicing
	// the stored list in the file backend) and sets their RouteID. Shared by
	// ordinary assignment and the consolidation engine.
	AssignStudentToRoute(studentID, routeID string) error

	// RemoveStudentFromRoute clears the student's RouteID.
	RemoveStudentFromRoute(studentID string) error

	// Commit flushes pending state. No-op for the database backend, which
	// commits on every write.
	Commit() error

	// Reload re-reads all entities from persistent storage so derived views
	// reflect commits made by any process. No-op for the database backend.
	Reload() error
}
