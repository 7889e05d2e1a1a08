package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hamilton_tms/internal/models"
	"hamilton_tms/internal/store"
)

type consolidationFixture struct {
	engine   *Engine
	provider *models.Provider
	area     *models.Area
	school   *models.School
}

func newConsolidationFixture(t *testing.T) *consolidationFixture {
	t.Helper()
	e := newTestEngine(t)

	school := &models.School{Name: "Hamilton"}
	require.NoError(t, e.Store().CreateSchool(school))
	provider := &models.Provider{Name: "Parent"}
	require.NoError(t, e.Store().CreateProvider(provider))
	area := &models.Area{Name: "Secondary", SchoolID: school.ID}
	require.NoError(t, e.Store().CreateArea(area))

	return &consolidationFixture{engine: e, provider: provider, area: area, school: school}
}

func (f *consolidationFixture) addStudent(t *testing.T, name string) *models.Student {
	t.Helper()
	st := &models.Student{Name: name, ClassName: "3A", SchoolID: f.school.ID}
	require.NoError(t, f.engine.CreateStudent(st))
	return st
}

func TestSyntheticRouteName(t *testing.T) {
	require.Equal(t, "Alice Smith's Parent", SyntheticRouteName("Alice Smith"))
}

func TestAssignToParentCollectionCreatesIndividualRoute(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")

	route, err := f.engine.AssignToParentCollection(alice.ID, f.area.ID, f.provider.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice Smith's Parent", route.RouteNumber)
	require.Equal(t, f.provider.ID, route.ProviderID)
	require.Equal(t, f.area.ID, route.AreaID)
	require.Equal(t, f.school.ID, route.SchoolID)
	require.Equal(t, 1, route.MaxCapacity)
	require.True(t, route.HiddenFromAdmin)

	fresh, err := f.engine.Store().GetStudent(alice.ID)
	require.NoError(t, err)
	require.Equal(t, route.ID, fresh.RouteID)
}

func TestAssignToParentCollectionRequiresPickupArea(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")

	_, err := f.engine.AssignToParentCollection(alice.ID, "", f.provider.ID)
	require.ErrorIs(t, err, ErrPickupAreaRequired)
}

func TestReassigningSameStudentReusesRoute(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")

	first, err := f.engine.AssignToParentCollection(alice.ID, f.area.ID, f.provider.ID)
	require.NoError(t, err)

	other := &models.Area{Name: "Primary", SchoolID: f.school.ID}
	require.NoError(t, f.engine.Store().CreateArea(other))

	second, err := f.engine.AssignToParentCollection(alice.ID, other.ID, f.provider.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, other.ID, second.AreaID)

	routes, err := f.engine.Store().GetAllRoutes()
	require.NoError(t, err)
	require.Len(t, routes, 1)
}

func TestTwoStudentsSameFirstNameGetSeparateRoutes(t *testing.T) {
	f := newConsolidationFixture(t)
	smith := f.addStudent(t, "Alice Smith")
	jones := f.addStudent(t, "Alice Jones")

	r1, err := f.engine.AssignToParentCollection(smith.ID, f.area.ID, f.provider.ID)
	require.NoError(t, err)
	r2, err := f.engine.AssignToParentCollection(jones.ID, f.area.ID, f.provider.ID)
	require.NoError(t, err)

	require.NotEqual(t, r1.ID, r2.ID)
	require.Equal(t, "Alice Smith's Parent", r1.RouteNumber)
	require.Equal(t, "Alice Jones's Parent", r2.RouteNumber)
}

func TestAssignStudentsDispatchesOnProvider(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")
	bob := f.addStudent(t, "Bob Brown")

	parentRoute := &models.Route{
		RouteNumber: models.CanonicalParentRouteNumber,
		ProviderID:  f.provider.ID,
		SchoolID:    f.school.ID,
	}
	require.NoError(t, f.engine.Store().CreateRoute(parentRoute))

	assigned, err := f.engine.AssignStudents(parentRoute.ID, []string{alice.ID, bob.ID}, f.area.ID)
	require.NoError(t, err)
	require.Equal(t, 2, assigned)

	// Neither student points at the canonical route itself.
	members, err := f.engine.Store().StudentsForRoute(parentRoute.ID)
	require.NoError(t, err)
	require.Empty(t, members)

	derived, err := f.engine.ParentRouteMembers(parentRoute)
	require.NoError(t, err)
	require.Len(t, derived, 2)
}

func TestAssignStudentsToOrdinaryRouteIgnoresPickupArea(t *testing.T) {
	f := newConsolidationFixture(t)
	bus := &models.Provider{Name: "HATS Transport"}
	require.NoError(t, f.engine.Store().CreateProvider(bus))
	route := &models.Route{RouteNumber: "R001", ProviderID: bus.ID, SchoolID: f.school.ID}
	require.NoError(t, f.engine.Store().CreateRoute(route))
	alice := f.addStudent(t, "Alice Smith")

	assigned, err := f.engine.AssignStudents(route.ID, []string{alice.ID}, "")
	require.NoError(t, err)
	require.Equal(t, 1, assigned)

	members, err := f.engine.Store().StudentsForRoute(route.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestAssignStudentsParentRouteRequiresArea(t *testing.T) {
	f := newConsolidationFixture(t)
	parentRoute := &models.Route{
		RouteNumber: models.CanonicalParentRouteNumber,
		ProviderID:  f.provider.ID,
	}
	require.NoError(t, f.engine.Store().CreateRoute(parentRoute))
	alice := f.addStudent(t, "Alice Smith")

	_, err := f.engine.AssignStudents(parentRoute.ID, []string{alice.ID}, "")
	require.ErrorIs(t, err, ErrPickupAreaRequired)
}

func TestUpdatePickupAreaMovesExistingRoute(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")
	_, err := f.engine.AssignToParentCollection(alice.ID, f.area.ID, f.provider.ID)
	require.NoError(t, err)

	other := &models.Area{Name: "Primary", SchoolID: f.school.ID}
	require.NoError(t, f.engine.Store().CreateArea(other))

	route, err := f.engine.UpdatePickupArea(alice.ID, other.ID)
	require.NoError(t, err)
	require.Equal(t, other.ID, route.AreaID)
}

func TestUpdatePickupAreaCreatesRouteLazily(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")

	canonical := &models.Route{
		RouteNumber: models.CanonicalParentRouteNumber,
		ProviderID:  f.provider.ID,
	}
	require.NoError(t, f.engine.Store().CreateRoute(canonical))

	route, err := f.engine.UpdatePickupArea(alice.ID, f.area.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice Smith's Parent", route.RouteNumber)
	require.Equal(t, f.provider.ID, route.ProviderID)
}

func TestUpdatePickupAreaScopedToOwnProvider(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")
	_, err := f.engine.AssignToParentCollection(alice.ID, f.area.ID, f.provider.ID)
	require.NoError(t, err)

	// A second Parent provider carries its own same-named synthetic route.
	rival := &models.Provider{Name: "parent"}
	require.NoError(t, f.engine.Store().CreateProvider(rival))
	rivalRoute := &models.Route{
		RouteNumber: SyntheticRouteName(alice.Name),
		ProviderID:  rival.ID,
		AreaID:      f.area.ID,
		SchoolID:    f.school.ID,
	}
	require.NoError(t, f.engine.Store().CreateRoute(rivalRoute))

	other := &models.Area{Name: "Primary", SchoolID: f.school.ID}
	require.NoError(t, f.engine.Store().CreateArea(other))

	moved, err := f.engine.UpdatePickupArea(alice.ID, other.ID)
	require.NoError(t, err)
	require.Equal(t, f.provider.ID, moved.ProviderID)
	require.Equal(t, other.ID, moved.AreaID)

	untouched, err := f.engine.Store().GetRoute(rivalRoute.ID)
	require.NoError(t, err)
	require.Equal(t, f.area.ID, untouched.AreaID)
}

func TestUpdatePickupAreaValidatesArea(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")

	_, err := f.engine.UpdatePickupArea(alice.ID, "missing-area")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.engine.UpdatePickupArea(alice.ID, "")
	require.ErrorIs(t, err, ErrPickupAreaRequired)
}

func TestRepairSplitsCollisionRoute(t *testing.T) {
	f := newConsolidationFixture(t)
	smith := f.addStudent(t, "Alice Smith")
	jones := f.addStudent(t, "Alice Jones")

	// Legacy naming: one first-name route holding two unrelated children.
	collision := &models.Route{
		RouteNumber: "Alice's Parent",
		Status:      models.RouteStatusArrived,
		ProviderID:  f.provider.ID,
		AreaID:      f.area.ID,
		SchoolID:    f.school.ID,
	}
	require.NoError(t, f.engine.Store().CreateRoute(collision))
	require.NoError(t, f.engine.Store().AssignStudentToRoute(smith.ID, collision.ID))
	require.NoError(t, f.engine.Store().AssignStudentToRoute(jones.ID, collision.ID))

	report, err := f.engine.RepairConsolidatedRoutes()
	require.NoError(t, err)
	require.Equal(t, 1, report.CollisionRoutes)
	require.Equal(t, 2, report.RoutesCreated)
	require.Equal(t, 2, report.StudentsMoved)
	require.Equal(t, 1, report.RoutesDeleted)

	_, err = f.engine.Store().GetRoute(collision.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	freshSmith, err := f.engine.Store().GetStudent(smith.ID)
	require.NoError(t, err)
	smithRoute, err := f.engine.Store().GetRoute(freshSmith.RouteID)
	require.NoError(t, err)
	require.Equal(t, "Alice Smith's Parent", smithRoute.RouteNumber)
	require.Equal(t, models.RouteStatusArrived, smithRoute.Status)
	require.Equal(t, f.area.ID, smithRoute.AreaID)
	require.True(t, smithRoute.HiddenFromAdmin)

	// Re-running changes nothing.
	report, err = f.engine.RepairConsolidatedRoutes()
	require.NoError(t, err)
	require.Zero(t, report.CollisionRoutes)
}

func TestRepairLeavesIdenticalNameDuplicatesAlone(t *testing.T) {
	f := newConsolidationFixture(t)

	// Legacy duplicate records carrying the exact same name are the
	// duplicate sweep's problem, not a naming collision.
	first := &models.Student{Name: "Alice Smith", ClassName: "3A"}
	second := &models.Student{Name: "alice smith", ClassName: "3A"}
	require.NoError(t, f.engine.Store().CreateStudent(first))
	require.NoError(t, f.engine.Store().CreateStudent(second))

	shared := &models.Route{
		RouteNumber: "Alice's Parent",
		ProviderID:  f.provider.ID,
		AreaID:      f.area.ID,
	}
	require.NoError(t, f.engine.Store().CreateRoute(shared))
	require.NoError(t, f.engine.Store().AssignStudentToRoute(first.ID, shared.ID))
	require.NoError(t, f.engine.Store().AssignStudentToRoute(second.ID, shared.ID))

	report, err := f.engine.RepairConsolidatedRoutes()
	require.NoError(t, err)
	require.Zero(t, report.CollisionRoutes)

	got, err := f.engine.Store().GetRoute(shared.ID)
	require.NoError(t, err)
	require.Len(t, got.StudentIDs, 2)
}

func TestRepairIgnoresCanonicalParentRoute(t *testing.T) {
	f := newConsolidationFixture(t)
	smith := f.addStudent(t, "Alice Smith")
	jones := f.addStudent(t, "Bob Jones")

	canonical := &models.Route{
		RouteNumber: models.CanonicalParentRouteNumber,
		ProviderID:  f.provider.ID,
	}
	require.NoError(t, f.engine.Store().CreateRoute(canonical))
	require.NoError(t, f.engine.Store().AssignStudentToRoute(smith.ID, canonical.ID))
	require.NoError(t, f.engine.Store().AssignStudentToRoute(jones.ID, canonical.ID))

	report, err := f.engine.RepairConsolidatedRoutes()
	require.NoError(t, err)
	require.Zero(t, report.CollisionRoutes)
}

func TestSweepOrphanedSyntheticRoutes(t *testing.T) {
	f := newConsolidationFixture(t)
	alice := f.addStudent(t, "Alice Smith")

	occupied, err := f.engine.AssignToParentCollection(alice.ID, f.area.ID, f.provider.ID)
	require.NoError(t, err)

	orphan := &models.Route{
		RouteNumber: "Bob Brown's Parent",
		ProviderID:  f.provider.ID,
		AreaID:      f.area.ID,
	}
	require.NoError(t, f.engine.Store().CreateRoute(orphan))

	removed, err := f.engine.SweepOrphanedSyntheticRoutes()
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = f.engine.Store().GetRoute(orphan.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.engine.Store().GetRoute(occupied.ID)
	require.NoError(t, err)
}

func TestParentProviderMatchIsCaseInsensitive(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Store().CreateProvider(&models.Provider{Name: "PARENT"}))

	p, err := e.ParentProvider()
	require.NoError(t, err)
	require.NotNil(t, p)

	e2 := newTestEngine(t)
	require.NoError(t, e2.Store().CreateProvider(&models.Provider{Name: "HATS Transport"}))
	p, err = e2.ParentProvider()
	require.NoError(t, err)
	require.Nil(t, p)
}
