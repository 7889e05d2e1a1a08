package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/dispatch"
	"hamilton_tms/internal/models"
)

// CreateRoute registers a new route
func CreateRoute(c *gin.Context) {
	var input models.Route
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Status == "" {
		input.Status = models.RouteStatusNotPresent
	}
	if !models.ValidRouteStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := engine.Store().CreateRoute(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create route: " + err.Error()})
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save route: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"route": input})
}

// GetRoute retrieves a route by ID
func GetRoute(c *gin.Context) {
	route, err := engine.Store().GetRoute(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// ListRoutes returns the admin route list: per-route summaries with the
// per-child parent routes folded into one aggregate row.
func ListRoutes(c *gin.Context) {
	summaries, err := engine.AdminRouteList()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch routes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

// UpdateRoute modifies an existing route
func UpdateRoute(c *gin.Context) {
	route, err := engine.Store().GetRoute(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}

	var input struct {
		RouteNumber *string `json:"route_number"`
		ProviderID  *string `json:"provider_id"`
		AreaID      *string `json:"area_id"`
		SchoolID    *string `json:"school_id"`
		MaxCapacity *int    `json:"max_capacity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.RouteNumber != nil {
		route.RouteNumber = *input.RouteNumber
	}
	if input.ProviderID != nil {
		route.ProviderID = *input.ProviderID
	}
	if input.AreaID != nil {
		route.AreaID = *input.AreaID
	}
	if input.SchoolID != nil {
		route.SchoolID = *input.SchoolID
	}
	if input.MaxCapacity != nil {
		route.MaxCapacity = *input.MaxCapacity
	}

	if err := engine.Store().UpdateRoute(route); err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save route: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// DeleteRoute removes a route. Its students keep their records but lose
// the assignment.
func DeleteRoute(c *gin.Context) {
	if err := engine.Store().DeleteRoute(c.Param("id")); err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}

func publishRoute(route *models.Route) {
	hub.PublishStatusChange(
		route.ID,
		route.RouteNumber,
		route.AreaID,
		route.Status,
		dispatch.StatusText(route.Status),
		dispatch.StatusColor(route.Status),
		route.GuidePresent,
	)
}

// SetRouteStatus sets a route to an explicit lifecycle state.
func SetRouteStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := engine.SetStatus(c.Param("id"), body.Status)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondStoreError(c, err, "Route not found")
		return
	}

	publishRoute(route)
	c.JSON(http.StatusOK, gin.H{
		"route":        route,
		"status_text":  dispatch.StatusText(route.Status),
		"status_color": dispatch.StatusColor(route.Status),
	})
}

// CycleRouteStatus advances a route one step around the status ring.
func CycleRouteStatus(c *gin.Context) {
	route, err := engine.Cycle(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}

	publishRoute(route)
	c.JSON(http.StatusOK, gin.H{
		"route":        route,
		"status_text":  dispatch.StatusText(route.Status),
		"status_color": dispatch.StatusColor(route.Status),
	})
}

// ToggleRouteGuide flips a route's guide_present flag.
func ToggleRouteGuide(c *gin.Context) {
	route, err := engine.ToggleGuidePresent(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}

	publishRoute(route)
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// BulkSetRouteStatus applies one status to a list of routes. Missing
// routes are skipped, not failed.
func BulkSetRouteStatus(c *gin.Context) {
	var body struct {
		RouteIDs []string `json:"route_ids" binding:"required"`
		Status   string   `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := engine.BulkSetStatus(body.RouteIDs, body.Status)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	hub.PublishReset("")
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// ResetRouteStatuses puts every route (optionally only one area's routes)
// back to not_present for the next dispatch session.
func ResetRouteStatuses(c *gin.Context) {
	areaID := c.Query("area_id")

	reset, err := engine.ResetAll(areaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	hub.PublishReset(areaID)
	c.JSON(http.StatusOK, gin.H{"reset": reset})
}

// routeStudentEntry is a roster row: for parent-collection members the
// pickup area comes from the child's synthetic route.
type routeStudentEntry struct {
	Student        models.Student `json:"student"`
	PickupAreaID   string         `json:"pickup_area_id,omitempty"`
	PickupAreaName string         `json:"pickup_area_name,omitempty"`
}

// RouteStudents returns a route's roster. For the canonical Parent route
// the roster is the derived union of all synthetic per-child routes.
func RouteStudents(c *gin.Context) {
	st := engine.Store()
	route, err := st.GetRoute(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}

	var students []models.Student
	if route.IsCanonicalParent() {
		students, err = engine.ParentRouteMembers(route)
	} else {
		students, err = st.StudentsForRoute(route.ID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	entries := make([]routeStudentEntry, 0, len(students))
	for _, s := range students {
		entry := routeStudentEntry{Student: s}
		if route.IsCanonicalParent() && s.RouteID != "" {
			if synthetic, err := st.GetRoute(s.RouteID); err == nil {
				entry.PickupAreaID = synthetic.AreaID
				if area, err := st.GetArea(synthetic.AreaID); err == nil {
					entry.PickupAreaName = area.Name
				}
			}
		}
		entries = append(entries, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"route":    route,
		"students": entries,
	})
}

// AssignStudentsToRoute moves a batch of students onto a route. When the
// route belongs to the Parent provider each student instead lands on their
// own synthetic collection route, which requires a pickup area.
func AssignStudentsToRoute(c *gin.Context) {
	var body struct {
		StudentIDs   []string `json:"student_ids" binding:"required"`
		PickupAreaID string   `json:"pickup_area_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moved, err := engine.AssignStudents(c.Param("id"), body.StudentIDs, body.PickupAreaID)
	if err != nil {
		if errors.Is(err, dispatch.ErrPickupAreaRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Pickup area is required for parent collection"})
			return
		}
		respondStoreError(c, err, "Route not found")
		return
	}

	hub.PublishReset("")
	c.JSON(http.StatusOK, gin.H{"assigned": moved})
}

// RemoveStudentFromRoute clears one student's assignment.
func RemoveStudentFromRoute(c *gin.Context) {
	studentID := c.Param("id")
	if err := engine.Store().RemoveStudentFromRoute(studentID); err != nil {
		respondStoreError(c, err, "Student not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student removed from route"})
}
