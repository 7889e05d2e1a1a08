package models

import (
	"strings"
	"time"
)

// Route status lifecycle: not_present -> arrived -> ready -> not_present.
const (
	RouteStatusNotPresent = "not_present" // red
	RouteStatusArrived    = "arrived"     // orange
	RouteStatusReady      = "ready"       // green
)

// SyntheticRouteSuffix is appended to a student's full name to form the
// route_number of their individual parent-collection route.
const SyntheticRouteSuffix = "'s Parent"

// CanonicalParentRouteNumber names the single aggregate parent route shown
// on the admin status board.
const CanonicalParentRouteNumber = "Parent"

// Route represents a named pickup assignment: a vehicle run, or a
// parent-collection run (canonical or per-child synthetic).
//
// Membership is derived from Student.RouteID in the relational backend. The
// flat-file backend additionally keeps the StudentIDs list in its snapshot;
// the column is never stored in the database.
type Route struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	RouteNumber     string    `json:"route_number" binding:"required" gorm:"not null"`
	Status          string    `json:"status" gorm:"default:not_present"`
	ProviderID      string    `json:"provider_id" gorm:"index"`
	AreaID          string    `json:"area_id" gorm:"index"`
	SchoolID        string    `json:"school_id" gorm:"index"`
	GuidePresent    bool      `json:"guide_present"`
	MaxCapacity     int       `json:"max_capacity" gorm:"default:50"`
	HiddenFromAdmin bool      `json:"hidden_from_admin"`
	StudentIDs      []string  `json:"student_ids,omitempty" gorm:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsSynthetic reports whether this is a per-child parent-collection route.
func (r *Route) IsSynthetic() bool {
	return strings.HasSuffix(r.RouteNumber, SyntheticRouteSuffix)
}

// IsCanonicalParent reports whether this is the aggregate "Parent" route.
func (r *Route) IsCanonicalParent() bool {
	return r.RouteNumber == CanonicalParentRouteNumber
}

// ValidRouteStatus reports whether s is one of the three lifecycle states.
func ValidRouteStatus(s string) bool {
	switch s {
	case RouteStatusNotPresent, RouteStatusArrived, RouteStatusReady:
		return true
	}
	return false
}
