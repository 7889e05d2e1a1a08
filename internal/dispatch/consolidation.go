package dispatch

import (
	"strings"

	"github.com/sirupsen/logrus"

	"hamilton_tms/internal/models"
	"hamilton_tms/internal/store"
)

// SyntheticRouteName builds the route_number of a student's individual
// parent-collection route. Full name, not first name: the first-name scheme
// is the historical bug the repair pass exists to undo.
func SyntheticRouteName(studentName string) string {
	return studentName + models.SyntheticRouteSuffix
}

// FindSyntheticRoute looks up an individual parent route by exact
// route_number and provider. Two providers may each own an
// "Alice Smith's Parent" route, so the provider match is not optional.
// Returns nil when no such route exists yet.
func (e *Engine) FindSyntheticRoute(routeNumber, providerID string) (*models.Route, error) {
	routes, err := e.store.GetAllRoutes()
	if err != nil {
		return nil, err
	}
	for i := range routes {
		if routes[i].RouteNumber == routeNumber && routes[i].ProviderID == providerID {
			return &routes[i], nil
		}
	}
	return nil, nil
}

// ParentProvider returns the parent-collection pseudo-provider, or nil when
// none exists.
func (e *Engine) ParentProvider() (*models.Provider, error) {
	providers, err := e.store.GetAllProviders()
	if err != nil {
		return nil, err
	}
	for i := range providers {
		if providers[i].IsParent() {
			return &providers[i], nil
		}
	}
	return nil, nil
}

// firstSchoolID is the single-school fallback used when a route carries no
// school context. Deployments with several schools must set it explicitly;
// this bias is documented, not fixed.
func (e *Engine) firstSchoolID() string {
	schools, err := e.store.GetAllSchools()
	if err != nil || len(schools) == 0 {
		return ""
	}
	return schools[0].ID
}

// AssignToParentCollection puts one student on parent collection at the
// given pickup area: reuse or lazily create their synthetic route under the
// provider, move the route to the new pickup area (last write wins), and
// reassign the student to it. The student is never linked to the canonical
// "Parent" route; canonical membership is computed, not stored.
//
// The synthetic route is committed before the student is reassigned, so a
// failure can leave an orphaned empty route (tolerated) but never a
// half-assigned student.
func (e *Engine) AssignToParentCollection(studentID, pickupAreaID, providerID string) (*models.Route, error) {
	if pickupAreaID == "" {
		return nil, ErrPickupAreaRequired
	}
	student, err := e.store.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	name := SyntheticRouteName(student.Name)
	route, err := e.FindSyntheticRoute(name, providerID)
	if err != nil {
		return nil, err
	}
	if route != nil {
		route.AreaID = pickupAreaID
		route.HiddenFromAdmin = true
		if err := e.store.UpdateRoute(route); err != nil {
			return nil, err
		}
	} else {
		schoolID := student.SchoolID
		if schoolID == "" {
			schoolID = e.firstSchoolID()
		}
		route = &models.Route{
			RouteNumber:     name,
			ProviderID:      providerID,
			AreaID:          pickupAreaID,
			SchoolID:        schoolID,
			MaxCapacity:     1,
			HiddenFromAdmin: true,
		}
		if err := e.store.CreateRoute(route); err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"route":   name,
			"student": student.Name,
		}).Info("created individual parent route")
	}
	if err := e.store.Commit(); err != nil {
		return nil, err
	}

	if err := e.store.AssignStudentToRoute(studentID, route.ID); err != nil {
		return nil, err
	}
	if err := e.store.Commit(); err != nil {
		return nil, err
	}
	return route, nil
}

// AssignStudents is the bulk assignment entry point shared by the admin
// UI. For a route under the Parent provider each student lands on their own
// synthetic route at pickupAreaID; for ordinary routes they are assigned
// directly and pickupAreaID is ignored.
func (e *Engine) AssignStudents(routeID string, studentIDs []string, pickupAreaID string) (int, error) {
	route, err := e.store.GetRoute(routeID)
	if err != nil {
		return 0, err
	}
	provider, err := e.store.GetProvider(route.ProviderID)
	if err != nil && err != store.ErrNotFound {
		return 0, err
	}
	isParent := provider != nil && provider.IsParent()
	if isParent && pickupAreaID == "" {
		return 0, ErrPickupAreaRequired
	}

	assigned := 0
	for _, sid := range studentIDs {
		sid = strings.TrimSpace(sid)
		if sid == "" {
			continue
		}
		if isParent {
			if _, err := e.AssignToParentCollection(sid, pickupAreaID, route.ProviderID); err != nil {
				if err == store.ErrNotFound {
					continue
				}
				return assigned, err
			}
		} else {
			if err := e.store.AssignStudentToRoute(sid, routeID); err != nil {
				if err == store.ErrNotFound {
					continue
				}
				return assigned, err
			}
			if err := e.store.Commit(); err != nil {
				return assigned, err
			}
		}
		assigned++
	}
	return assigned, nil
}

// ParentRouteMembers derives the canonical Parent route's effective
// membership: every student whose route_id points at any synthetic route
// under the same provider. Recomputed on every read, since synthetic routes
// are created and mutated outside the canonical route's own record.
func (e *Engine) ParentRouteMembers(canonical *models.Route) ([]models.Student, error) {
	routes, err := e.store.GetAllRoutes()
	if err != nil {
		return nil, err
	}
	members := []models.Student{}
	for _, r := range routes {
		if !r.IsSynthetic() || r.ProviderID != canonical.ProviderID {
			continue
		}
		students, err := e.store.StudentsForRoute(r.ID)
		if err != nil {
			return nil, err
		}
		members = append(members, students...)
	}
	return members, nil
}

// UpdatePickupArea relocates one parent-collected student: point their
// synthetic route at the new area, creating the route lazily (under the
// canonical Parent route's provider) if a prior migration lost it.
func (e *Engine) UpdatePickupArea(studentID, areaID string) (*models.Route, error) {
	if areaID == "" {
		return nil, ErrPickupAreaRequired
	}
	if _, err := e.store.GetArea(areaID); err != nil {
		return nil, err
	}
	student, err := e.store.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	// The student's own route is authoritative: two providers may each
	// carry a same-named synthetic route, and only the student's must move.
	name := SyntheticRouteName(student.Name)
	if student.RouteID != "" {
		if current, err := e.store.GetRoute(student.RouteID); err == nil && current.RouteNumber == name {
			current.AreaID = areaID
			if err := e.store.UpdateRoute(current); err != nil {
				return nil, err
			}
			return current, e.store.Commit()
		}
	}

	// No direct link (a prior migration lost it): re-collect under the
	// canonical Parent route's provider, reusing that provider's synthetic
	// route if one survives.
	routes, err := e.store.GetAllRoutes()
	if err != nil {
		return nil, err
	}
	for i := range routes {
		if routes[i].IsCanonicalParent() {
			return e.AssignToParentCollection(studentID, areaID, routes[i].ProviderID)
		}
	}
	return nil, store.ErrNotFound
}

// RepairReport summarizes one run of the consolidation repair pass.
type RepairReport struct {
	CollisionRoutes int `json:"collision_routes"`
	RoutesCreated   int `json:"routes_created"`
	StudentsMoved   int `json:"students_moved"`
	RoutesDeleted   int `json:"routes_deleted"`
}

// RepairConsolidatedRoutes finds and dissolves collision routes left by the
// first-name-only naming scheme: a route whose name contains "Parent" (but
// is not the canonical "Parent") holding more than one student whose full
// names differ. Each student is moved to a correctly named full-name
// synthetic route inheriting the collision route's provider, area and
// status, then the collision route is deleted.
//
// Safe to re-run: a repaired dataset contains no collision routes, so a
// second pass changes nothing. Runs at startup before any view reads the
// data.
func (e *Engine) RepairConsolidatedRoutes() (RepairReport, error) {
	var report RepairReport
	routes, err := e.store.GetAllRoutes()
	if err != nil {
		return report, err
	}

	for _, r := range routes {
		if !strings.Contains(r.RouteNumber, models.CanonicalParentRouteNumber) || r.IsCanonicalParent() {
			continue
		}
		students, err := e.store.StudentsForRoute(r.ID)
		if err != nil {
			return report, err
		}
		if len(students) < 2 {
			continue
		}
		collision := false
		for _, st := range students[1:] {
			// Only literally identical names (legacy duplicate records)
			// legitimately share one route.
			if !strings.EqualFold(st.Name, students[0].Name) {
				collision = true
				break
			}
		}
		if !collision {
			continue
		}

		report.CollisionRoutes++
		logrus.WithFields(logrus.Fields{
			"route":    r.RouteNumber,
			"students": len(students),
		}).Warn("found collision route, splitting")

		for _, st := range students {
			name := SyntheticRouteName(st.Name)
			target, err := e.FindSyntheticRoute(name, r.ProviderID)
			if err != nil {
				return report, err
			}
			if target == nil {
				target = &models.Route{
					RouteNumber:     name,
					Status:          r.Status,
					ProviderID:      r.ProviderID,
					AreaID:          r.AreaID,
					SchoolID:        r.SchoolID,
					GuidePresent:    r.GuidePresent,
					MaxCapacity:     1,
					HiddenFromAdmin: true,
				}
				if err := e.store.CreateRoute(target); err != nil {
					return report, err
				}
				report.RoutesCreated++
			}
			if err := e.store.AssignStudentToRoute(st.ID, target.ID); err != nil {
				return report, err
			}
			report.StudentsMoved++
		}

		if err := e.store.DeleteRoute(r.ID); err != nil {
			return report, err
		}
		report.RoutesDeleted++
	}

	if report.CollisionRoutes > 0 {
		if err := e.store.Commit(); err != nil {
			return report, err
		}
		logrus.WithFields(logrus.Fields{
			"collisions": report.CollisionRoutes,
			"created":    report.RoutesCreated,
			"moved":      report.StudentsMoved,
		}).Info("consolidation repair complete")
	}
	return report, nil
}

// SweepOrphanedSyntheticRoutes deletes synthetic routes with zero members.
// Unassignment never deletes them automatically; this is the explicit
// cleanup pass.
func (e *Engine) SweepOrphanedSyntheticRoutes() (int, error) {
	routes, err := e.store.GetAllRoutes()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, r := range routes {
		if !r.IsSynthetic() {
			continue
		}
		students, err := e.store.StudentsForRoute(r.ID)
		if err != nil {
			return removed, err
		}
		if len(students) > 0 {
			continue
		}
		if err := e.store.DeleteRoute(r.ID); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		if err := e.store.Commit(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}
