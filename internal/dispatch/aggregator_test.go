package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hamilton_tms/internal/models"
)

// boardFixture builds a small school: one ordinary route, the canonical
// Parent route with two collected children, and a legacy route parked in
// the "Multiple areas" sentinel.
type boardFixture struct {
	engine    *Engine
	area      *models.Area
	multiArea *models.Area
	bus       *models.Route
	canonical *models.Route
	legacy    *models.Route
	emma      *models.Student
	oliver    *models.Student
	freya     *models.Student
	noRoute   *models.Student
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()
	e := newTestEngine(t)

	school := &models.School{Name: "Hamilton"}
	require.NoError(t, e.Store().CreateSchool(school))

	hats := &models.Provider{Name: "HATS Transport"}
	parent := &models.Provider{Name: "Parent"}
	require.NoError(t, e.Store().CreateProvider(hats))
	require.NoError(t, e.Store().CreateProvider(parent))

	area := &models.Area{Name: "Secondary", SchoolID: school.ID}
	multi := &models.Area{Name: models.MultipleAreasName, SchoolID: school.ID}
	require.NoError(t, e.Store().CreateArea(area))
	require.NoError(t, e.Store().CreateArea(multi))

	bus := &models.Route{RouteNumber: "R001", ProviderID: hats.ID, AreaID: area.ID, SchoolID: school.ID}
	canonical := &models.Route{RouteNumber: models.CanonicalParentRouteNumber, ProviderID: parent.ID, SchoolID: school.ID}
	legacy := &models.Route{RouteNumber: "Old Consolidated", ProviderID: hats.ID, AreaID: multi.ID, SchoolID: school.ID}
	require.NoError(t, e.Store().CreateRoute(bus))
	require.NoError(t, e.Store().CreateRoute(canonical))
	require.NoError(t, e.Store().CreateRoute(legacy))

	f := &boardFixture{engine: e, area: area, multiArea: multi, bus: bus, canonical: canonical, legacy: legacy}

	f.emma = &models.Student{Name: "Emma Johnson", ClassName: "3A", SchoolID: school.ID}
	f.oliver = &models.Student{Name: "Oliver Smith", ClassName: "3A", SchoolID: school.ID}
	f.freya = &models.Student{Name: "Freya Brown", ClassName: "3A", SchoolID: school.ID}
	f.noRoute = &models.Student{Name: "Noah Davis", ClassName: "3A", SchoolID: school.ID}
	for _, st := range []*models.Student{f.emma, f.oliver, f.freya, f.noRoute} {
		require.NoError(t, e.CreateStudent(st))
	}

	require.NoError(t, e.Store().AssignStudentToRoute(f.emma.ID, bus.ID))

	_, err := e.AssignToParentCollection(f.oliver.ID, area.ID, parent.ID)
	require.NoError(t, err)
	_, err = e.AssignToParentCollection(f.freya.ID, area.ID, parent.ID)
	require.NoError(t, err)

	return f
}

func findSummary(summaries []RouteSummary, routeNumber string) *RouteSummary {
	for i := range summaries {
		if summaries[i].RouteNumber == routeNumber {
			return &summaries[i]
		}
	}
	return nil
}

func TestAdminRouteListAggregatesParentRow(t *testing.T) {
	f := newBoardFixture(t)

	summaries, err := f.engine.AdminRouteList()
	require.NoError(t, err)

	// Synthetic per-child routes are hidden from this surface.
	require.Nil(t, findSummary(summaries, "Oliver Smith's Parent"))
	require.Nil(t, findSummary(summaries, "Freya Brown's Parent"))

	parentRow := findSummary(summaries, "Parent")
	require.NotNil(t, parentRow)
	require.Equal(t, 2, parentRow.StudentCount)
	require.Empty(t, parentRow.AreaName)

	busRow := findSummary(summaries, "R001")
	require.NotNil(t, busRow)
	require.Equal(t, 1, busRow.StudentCount)
	require.Equal(t, "Secondary", busRow.AreaName)
}

func TestCheckinBoardListsIndividualRoutes(t *testing.T) {
	f := newBoardFixture(t)

	board, err := f.engine.CheckinBoard("")
	require.NoError(t, err)

	// The aggregate Parent row never appears here; the per-child routes do.
	require.Nil(t, findSummary(board.Routes, "Parent"))
	require.NotNil(t, findSummary(board.Routes, "Oliver Smith's Parent"))
	require.NotNil(t, findSummary(board.Routes, "Freya Brown's Parent"))
	require.NotNil(t, findSummary(board.Routes, "R001"))

	// All four individual routes start not_present.
	require.Equal(t, 4, board.NotPresent)
	require.Zero(t, board.Ready)

	// Area filter list: populated areas minus the sentinel.
	require.Len(t, board.Areas, 1)
	require.Equal(t, "Secondary", board.Areas[0].Name)
}

func TestCheckinBoardAreaScope(t *testing.T) {
	f := newBoardFixture(t)

	board, err := f.engine.CheckinBoard(f.multiArea.ID)
	require.NoError(t, err)
	require.Len(t, board.Routes, 1)
	require.Equal(t, "Old Consolidated", board.Routes[0].RouteNumber)
}

func TestClassCheckinGroupsByDirectRoute(t *testing.T) {
	f := newBoardFixture(t)

	// Park a student on the legacy multi-area route; they must vanish from
	// the class view entirely.
	require.NoError(t, f.engine.Store().AssignStudentToRoute(f.noRoute.ID, f.legacy.ID))

	extra := &models.Student{Name: "Ava Wilson", ClassName: "3A"}
	require.NoError(t, f.engine.CreateStudent(extra))

	data, err := f.engine.ClassCheckinData("3A")
	require.NoError(t, err)
	require.Equal(t, "3A", data.ClassName)

	var numbers []string
	for _, g := range data.TransportGroups {
		numbers = append(numbers, g.RouteNumber)
	}
	require.Equal(t, []string{
		"Freya Brown's Parent",
		"Oliver Smith's Parent",
		"R001",
		"No Route",
	}, numbers)

	last := data.TransportGroups[len(data.TransportGroups)-1]
	require.Equal(t, "No Transport", last.Area)
	require.Equal(t, "Not Ready", last.CheckinStatus)
	require.Len(t, last.Students, 1)
	require.Equal(t, "Ava Wilson", last.Students[0].Name)

	require.Equal(t, 4, data.TotalStudents)
	require.Zero(t, data.ReadyStudents)
	require.Equal(t, 4, data.NotReadyStudents)
}

func TestClassCheckinCountsReadyStudents(t *testing.T) {
	f := newBoardFixture(t)

	_, err := f.engine.SetStatus(f.bus.ID, models.RouteStatusReady)
	require.NoError(t, err)

	data, err := f.engine.ClassCheckinData("3A")
	require.NoError(t, err)

	busGroup := data.TransportGroups[2]
	require.Equal(t, "R001", busGroup.RouteNumber)
	require.Equal(t, "Ready", busGroup.CheckinStatus)
	require.Equal(t, 1, data.ReadyStudents)
}

func TestStatsUnfiltered(t *testing.T) {
	f := newBoardFixture(t)

	stats, err := f.engine.Stats("")
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalSchools)
	// bus + canonical + legacy + two synthetic.
	require.Equal(t, 5, stats.TotalRoutes)
	require.Equal(t, 4, stats.TotalStudents)
}

func TestStatsClassFilterSkipsSentinelRoutes(t *testing.T) {
	f := newBoardFixture(t)
	require.NoError(t, f.engine.Store().AssignStudentToRoute(f.noRoute.ID, f.legacy.ID))

	stats, err := f.engine.Stats("3A")
	require.NoError(t, err)
	// Emma on the bus plus the two parent-collected children; Noah sits on
	// a sentinel-area route and is excluded.
	require.Equal(t, 3, stats.TotalStudents)
	require.Equal(t, 3, stats.TotalRoutes)
}

func TestRoutesByStatusNotReadyAlias(t *testing.T) {
	f := newBoardFixture(t)
	_, err := f.engine.SetStatus(f.bus.ID, models.RouteStatusReady)
	require.NoError(t, err)

	ready, err := f.engine.RoutesByStatus(models.RouteStatusReady, "")
	require.NoError(t, err)
	require.Len(t, ready, 1)
	require.Equal(t, "R001", ready[0].RouteNumber)

	notReady, err := f.engine.RoutesByStatus("not_ready", "")
	require.NoError(t, err)
	require.Len(t, notReady, 4)

	_, err = f.engine.RoutesByStatus("bogus", "")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUniqueClassNames(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.CreateStudent(&models.Student{Name: "Emma Johnson", ClassName: "3A"}))
	require.NoError(t, e.CreateStudent(&models.Student{Name: "Oliver Smith", ClassName: "5B"}))
	require.NoError(t, e.CreateStudent(&models.Student{Name: "Noah Davis", ClassName: "3A"}))
	require.NoError(t, e.CreateStudent(&models.Student{Name: "Ava Wilson"}))

	names, err := e.UniqueClassNames()
	require.NoError(t, err)
	require.Equal(t, []string{"3A", "5B"}, names)
}

func TestRouteAlerts(t *testing.T) {
	e := newTestEngine(t)
	route := mustCreateRoute(t, e, &models.Route{RouteNumber: "R001"})

	safe := &models.Student{Name: "Emma Johnson", SafeguardingNotes: "Escort handover required"}
	medical := &models.Student{Name: "Oliver Smith", RequiresPediatricFirstAid: true}
	plain := &models.Student{Name: "Noah Davis"}
	for _, st := range []*models.Student{safe, medical, plain} {
		require.NoError(t, e.CreateStudent(st))
		require.NoError(t, e.Store().AssignStudentToRoute(st.ID, route.ID))
	}

	alerts, err := e.SafeguardingAlerts(route.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, "Emma Johnson", alerts[0].Name)

	pfa, err := e.PediatricFirstAidAlerts(route.ID)
	require.NoError(t, err)
	require.Len(t, pfa, 1)
	require.Equal(t, "Oliver Smith", pfa[0].Name)
}
