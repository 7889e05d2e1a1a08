package dispatch

import (
	"github.com/sirupsen/logrus"

	"hamilton_tms/internal/models"
	"hamilton_tms/internal/store"
)

// StatusText returns the display label for a route status.
func StatusText(status string) string {
	switch status {
	case models.RouteStatusNotPresent:
		return "Not Present"
	case models.RouteStatusArrived:
		return "Arrived"
	case models.RouteStatusReady:
		return "Ready"
	}
	return "Unknown"
}

// StatusColor returns the display colour class for a route status.
func StatusColor(status string) string {
	switch status {
	case models.RouteStatusNotPresent:
		return "danger"
	case models.RouteStatusArrived:
		return "warning"
	case models.RouteStatusReady:
		return "success"
	}
	return "secondary"
}

// nextStatus advances one step around the fixed ring. There are no
// preconditions; ready cycles back to not_present.
func nextStatus(current string) string {
	switch current {
	case models.RouteStatusNotPresent:
		return models.RouteStatusArrived
	case models.RouteStatusArrived:
		return models.RouteStatusReady
	default:
		return models.RouteStatusNotPresent
	}
}

// SetStatus moves a route to the target status and commits. Transitioning
// to ready forces guide_present=true, silently overriding whatever value was
// there; the reverse never happens (cycling away from ready leaves guide
// presence untouched).
func (e *Engine) SetStatus(routeID, status string) (*models.Route, error) {
	if !models.ValidRouteStatus(status) {
		return nil, ErrInvalidStatus
	}
	route, err := e.store.GetRoute(routeID)
	if err != nil {
		return nil, err
	}
	route.Status = status
	if status == models.RouteStatusReady {
		route.GuidePresent = true
	}
	if err := e.store.UpdateRoute(route); err != nil {
		return nil, err
	}
	if err := e.store.Commit(); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"route":  route.RouteNumber,
		"status": status,
	}).Debug("route status updated")
	return route, nil
}

// Cycle advances a route one step: not_present -> arrived -> ready ->
// not_present. Returns the updated route.
func (e *Engine) Cycle(routeID string) (*models.Route, error) {
	route, err := e.store.GetRoute(routeID)
	if err != nil {
		return nil, err
	}
	return e.SetStatus(routeID, nextStatus(route.Status))
}

// ToggleGuidePresent flips guide presence independently of status. A ready
// route with no guide stays ready; the UI renders the guide warning.
func (e *Engine) ToggleGuidePresent(routeID string) (*models.Route, error) {
	route, err := e.store.GetRoute(routeID)
	if err != nil {
		return nil, err
	}
	route.GuidePresent = !route.GuidePresent
	if err := e.store.UpdateRoute(route); err != nil {
		return nil, err
	}
	if err := e.store.Commit(); err != nil {
		return nil, err
	}
	return route, nil
}

// BulkSetStatus applies SetStatus to each route, skipping missing IDs, and
// returns how many were updated.
func (e *Engine) BulkSetStatus(routeIDs []string, status string) (int, error) {
	if !models.ValidRouteStatus(status) {
		return 0, ErrInvalidStatus
	}
	updated := 0
	for _, id := range routeIDs {
		if _, err := e.SetStatus(id, status); err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// ResetAll sets routes back to not_present, optionally restricted to one
// area, and returns the number reset.
func (e *Engine) ResetAll(areaID string) (int, error) {
	routes, err := e.store.GetAllRoutes()
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, r := range routes {
		if areaID != "" && r.AreaID != areaID {
			continue
		}
		if _, err := e.SetStatus(r.ID, models.RouteStatusNotPresent); err != nil {
			return updated, err
		}
		updated++
	}
	logrus.WithField("count", updated).Info("routes reset to not present")
	return updated, nil
}
