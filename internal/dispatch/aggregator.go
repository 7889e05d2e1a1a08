package dispatch

import (
	"sort"
	"strings"

	"hamilton_tms/internal/models"
)

// RouteSummary is one enriched row on a route listing surface.
type RouteSummary struct {
	ID           string `json:"id"`
	RouteNumber  string `json:"route_number"`
	ProviderName string `json:"provider_name"`
	AreaName     string `json:"area_name"`
	Status       string `json:"status"`
	StatusText   string `json:"status_text"`
	StatusColor  string `json:"status_color"`
	GuidePresent bool   `json:"guide_present"`
	StudentCount int    `json:"student_count"`
}

// StatusBoard is the Transport Check-in board: every individual route
// (synthetic ones included) with live status, plus the area filter list.
type StatusBoard struct {
	Routes     []RouteSummary `json:"routes"`
	Areas      []models.Area  `json:"areas"`
	Ready      int            `json:"ready_routes"`
	Arrived    int            `json:"arrived_routes"`
	NotPresent int            `json:"not_arrived_routes"`
}

// CheckinGroup is one route's block on a class check-in list.
type CheckinGroup struct {
	RouteNumber   string           `json:"route_number"`
	Area          string           `json:"area"`
	CheckinStatus string           `json:"checkin_status"`
	Students      []models.Student `json:"students"`
}

// ClassCheckin is the per-class check-in view: students grouped by their
// direct route, with a trailing No Route group.
type ClassCheckin struct {
	ClassName        string         `json:"class_name"`
	TransportGroups  []CheckinGroup `json:"transport_groups"`
	TotalStudents    int            `json:"total_students"`
	ReadyStudents    int            `json:"ready_students"`
	NotReadyStudents int            `json:"not_ready_students"`
}

// DashboardStats are the tile counts on the dashboard, re-derived from
// entity state on every request.
type DashboardStats struct {
	TotalSchools  int `json:"total_schools"`
	TotalRoutes   int `json:"total_routes"`
	TotalStudents int `json:"total_students"`
	Ready         int `json:"ready_routes"`
	Arrived       int `json:"arrived_routes"`
	NotPresent    int `json:"not_ready_routes"`
}

// viewData is one coherent read of everything the view layer derives from.
type viewData struct {
	routes    []models.Route
	students  []models.Student
	providers map[string]models.Provider
	areas     map[string]models.Area
}

func (e *Engine) loadViewData() (*viewData, error) {
	routes, err := e.store.GetAllRoutes()
	if err != nil {
		return nil, err
	}
	students, err := e.store.GetAllStudents()
	if err != nil {
		return nil, err
	}
	providers, err := e.store.GetAllProviders()
	if err != nil {
		return nil, err
	}
	areas, err := e.store.GetAllAreas()
	if err != nil {
		return nil, err
	}
	v := &viewData{
		routes:    routes,
		students:  students,
		providers: make(map[string]models.Provider, len(providers)),
		areas:     make(map[string]models.Area, len(areas)),
	}
	for _, p := range providers {
		v.providers[p.ID] = p
	}
	for _, a := range areas {
		v.areas[a.ID] = a
	}
	return v, nil
}

func (v *viewData) providerName(id string) string {
	if p, ok := v.providers[id]; ok {
		return p.Name
	}
	return "Unknown Provider"
}

func (v *viewData) areaName(id string) string {
	if a, ok := v.areas[id]; ok {
		return a.Name
	}
	return "Unknown Area"
}

// inMultipleAreas reports whether the route sits in the sentinel area that
// per-area views must skip.
func (v *viewData) inMultipleAreas(r *models.Route) bool {
	a, ok := v.areas[r.AreaID]
	return ok && a.IsMultiple()
}

// directMembers counts students whose route_id points at the route.
func (v *viewData) directMembers(routeID string) []models.Student {
	var out []models.Student
	for _, st := range v.students {
		if st.RouteID == routeID {
			out = append(out, st)
		}
	}
	return out
}

// effectiveMembers resolves a route's membership: derived union across
// synthetic routes for the canonical Parent route, direct membership for
// everything else.
func (v *viewData) effectiveMembers(r *models.Route) []models.Student {
	if !r.IsCanonicalParent() {
		return v.directMembers(r.ID)
	}
	var out []models.Student
	for _, other := range v.routes {
		if other.IsSynthetic() && other.ProviderID == r.ProviderID {
			out = append(out, v.directMembers(other.ID)...)
		}
	}
	return out
}

func (v *viewData) summarize(r *models.Route) RouteSummary {
	return RouteSummary{
		ID:           r.ID,
		RouteNumber:  r.RouteNumber,
		ProviderName: v.providerName(r.ProviderID),
		AreaName:     v.areaName(r.AreaID),
		Status:       r.Status,
		StatusText:   StatusText(r.Status),
		StatusColor:  StatusColor(r.Status),
		GuidePresent: r.GuidePresent,
		StudentCount: len(v.effectiveMembers(r)),
	}
}

// AdminRouteList is the Route Admin surface: synthetic routes are hidden
// and the canonical Parent route appears as a single aggregate row whose
// count unions its synthetic routes. Its area renders empty because parent
// collection spans multiple pickup areas.
func (e *Engine) AdminRouteList() ([]RouteSummary, error) {
	v, err := e.loadViewData()
	if err != nil {
		return nil, err
	}
	out := []RouteSummary{}
	for i := range v.routes {
		r := &v.routes[i]
		if r.HiddenFromAdmin {
			continue
		}
		row := v.summarize(r)
		if r.IsCanonicalParent() {
			row.AreaName = ""
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].RouteNumber) < strings.ToLower(out[j].RouteNumber)
	})
	return out, nil
}

// CheckinBoard is the live status board. The full dataset is reloaded from
// persistent storage first so devices see each other's writes. The literal
// "Parent" aggregate is excluded here (this surface lists individual
// routes only) while synthetic per-child routes are included. The area
// filter list holds only areas with populated routes, minus the
// "Multiple areas" sentinel.
func (e *Engine) CheckinBoard(areaID string) (*StatusBoard, error) {
	if err := e.store.Reload(); err != nil {
		return nil, err
	}
	v, err := e.loadViewData()
	if err != nil {
		return nil, err
	}

	board := &StatusBoard{Routes: []RouteSummary{}, Areas: []models.Area{}}
	seenAreas := map[string]bool{}
	for i := range v.routes {
		r := &v.routes[i]
		if r.IsCanonicalParent() {
			continue
		}
		if len(v.directMembers(r.ID)) > 0 && !v.inMultipleAreas(r) {
			if a, ok := v.areas[r.AreaID]; ok && !seenAreas[a.ID] {
				seenAreas[a.ID] = true
				board.Areas = append(board.Areas, a)
			}
		}
		if areaID != "" && r.AreaID != areaID {
			continue
		}
		board.Routes = append(board.Routes, v.summarize(r))
		switch r.Status {
		case models.RouteStatusReady:
			board.Ready++
		case models.RouteStatusArrived:
			board.Arrived++
		case models.RouteStatusNotPresent:
			board.NotPresent++
		}
	}
	sort.Slice(board.Routes, func(i, j int) bool {
		return strings.ToLower(board.Routes[i].RouteNumber) < strings.ToLower(board.Routes[j].RouteNumber)
	})
	sort.Slice(board.Areas, func(i, j int) bool {
		return board.Areas[i].Name < board.Areas[j].Name
	})
	return board, nil
}

// ClassCheckinData groups one class's students by their direct route,
// with synthetic routes rendering individually ("Freya's Parent"), sorted by
// route_number with a trailing No Route group. Routes in "Multiple areas"
// are skipped entirely: they are the legacy consolidated view and must not
// leak into per-class check-in.
func (e *Engine) ClassCheckinData(className string) (*ClassCheckin, error) {
	v, err := e.loadViewData()
	if err != nil {
		return nil, err
	}

	groups := map[string]*CheckinGroup{}
	var noRoute []models.Student
	routesByID := make(map[string]models.Route, len(v.routes))
	for _, r := range v.routes {
		routesByID[r.ID] = r
	}

	for _, st := range v.students {
		if st.ClassName != className {
			continue
		}
		r, ok := routesByID[st.RouteID]
		if !ok {
			noRoute = append(noRoute, st)
			continue
		}
		if v.inMultipleAreas(&r) {
			continue
		}
		g, ok := groups[r.ID]
		if !ok {
			status := "Not Ready"
			if r.Status == models.RouteStatusReady {
				status = "Ready"
			}
			g = &CheckinGroup{
				RouteNumber:   r.RouteNumber,
				Area:          v.areaName(r.AreaID),
				CheckinStatus: status,
				Students:      []models.Student{},
			}
			groups[r.ID] = g
		}
		g.Students = append(g.Students, st)
	}

	out := &ClassCheckin{ClassName: className, TransportGroups: []CheckinGroup{}}
	for _, g := range groups {
		sort.Slice(g.Students, func(i, j int) bool {
			return strings.ToLower(g.Students[i].Name) < strings.ToLower(g.Students[j].Name)
		})
		out.TransportGroups = append(out.TransportGroups, *g)
	}
	sort.Slice(out.TransportGroups, func(i, j int) bool {
		return out.TransportGroups[i].RouteNumber < out.TransportGroups[j].RouteNumber
	})

	if len(noRoute) > 0 {
		sort.Slice(noRoute, func(i, j int) bool {
			return strings.ToLower(noRoute[i].Name) < strings.ToLower(noRoute[j].Name)
		})
		out.TransportGroups = append(out.TransportGroups, CheckinGroup{
			RouteNumber:   "No Route",
			Area:          "No Transport",
			CheckinStatus: "Not Ready",
			Students:      noRoute,
		})
	}

	for _, g := range out.TransportGroups {
		out.TotalStudents += len(g.Students)
		if g.CheckinStatus == "Ready" {
			out.ReadyStudents += len(g.Students)
		}
	}
	out.NotReadyStudents = out.TotalStudents - out.ReadyStudents
	return out, nil
}

// Stats derives the dashboard tile counts. With a class filter it applies
// the same restrictions as the class check-in view, including the
// "Multiple areas" exclusion.
func (e *Engine) Stats(classFilter string) (*DashboardStats, error) {
	v, err := e.loadViewData()
	if err != nil {
		return nil, err
	}
	schools, err := e.store.GetAllSchools()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalSchools: len(schools)}

	countedRoutes := v.routes
	countedStudents := v.students
	if classFilter != "" {
		routesByID := make(map[string]models.Route, len(v.routes))
		for _, r := range v.routes {
			routesByID[r.ID] = r
		}
		routeIDs := map[string]bool{}
		var students []models.Student
		for _, st := range v.students {
			if st.ClassName != classFilter {
				continue
			}
			r, ok := routesByID[st.RouteID]
			if !ok {
				continue
			}
			if v.inMultipleAreas(&r) {
				continue
			}
			routeIDs[r.ID] = true
			students = append(students, st)
		}
		var routes []models.Route
		for _, r := range v.routes {
			if routeIDs[r.ID] {
				routes = append(routes, r)
			}
		}
		countedRoutes = routes
		countedStudents = students
	}

	stats.TotalRoutes = len(countedRoutes)
	stats.TotalStudents = len(countedStudents)
	for _, r := range countedRoutes {
		switch r.Status {
		case models.RouteStatusReady:
			stats.Ready++
		case models.RouteStatusArrived:
			stats.Arrived++
		case models.RouteStatusNotPresent:
			stats.NotPresent++
		}
	}
	return stats, nil
}

// RoutesByStatus lists routes in one lifecycle state, optionally narrowed
// to routes used by a class's students. "not_ready" is accepted as an alias
// for not_present to match the board tiles.
func (e *Engine) RoutesByStatus(status, classFilter string) ([]RouteSummary, error) {
	if status == "not_ready" {
		status = models.RouteStatusNotPresent
	}
	if !models.ValidRouteStatus(status) {
		return nil, ErrInvalidStatus
	}
	v, err := e.loadViewData()
	if err != nil {
		return nil, err
	}

	var classRoutes map[string]bool
	if classFilter != "" {
		classRoutes = map[string]bool{}
		for _, st := range v.students {
			if st.ClassName == classFilter && st.RouteID != "" {
				classRoutes[st.RouteID] = true
			}
		}
	}

	out := []RouteSummary{}
	for i := range v.routes {
		r := &v.routes[i]
		if r.Status != status {
			continue
		}
		if classRoutes != nil && !classRoutes[r.ID] {
			continue
		}
		out = append(out, v.summarize(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].RouteNumber) < strings.ToLower(out[j].RouteNumber)
	})
	return out, nil
}

// UniqueClassNames lists every class that has students, sorted.
func (e *Engine) UniqueClassNames() ([]string, error) {
	students, err := e.store.GetAllStudents()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, st := range students {
		if st.ClassName != "" && !seen[st.ClassName] {
			seen[st.ClassName] = true
			names = append(names, st.ClassName)
		}
	}
	sort.Strings(names)
	return names, nil
}

// SafeguardingAlerts returns students on a route carrying safeguarding
// notes.
func (e *Engine) SafeguardingAlerts(routeID string) ([]models.Student, error) {
	students, err := e.store.StudentsForRoute(routeID)
	if err != nil {
		return nil, err
	}
	out := []models.Student{}
	for _, st := range students {
		if st.SafeguardingNotes != "" {
			out = append(out, st)
		}
	}
	return out, nil
}

// PediatricFirstAidAlerts returns students on a route flagged as requiring
// pediatric first aid.
func (e *Engine) PediatricFirstAidAlerts(routeID string) ([]models.Student, error) {
	students, err := e.store.StudentsForRoute(routeID)
	if err != nil {
		return nil, err
	}
	out := []models.Student{}
	for _, st := range students {
		if st.RequiresPediatricFirstAid {
			out = append(out, st)
		}
	}
	return out, nil
}
