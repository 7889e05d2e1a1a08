package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/config"
	"hamilton_tms/internal/models"
)

// currentUser loads the authenticated staff account set on the context by
// RequireAuth.
func currentUser(c *gin.Context) (*models.User, bool) {
	idIfc, exists := c.Get("user_id")
	if !exists {
		return nil, false
	}
	userID, ok := idIfc.(uint)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := config.DB.Preload("ClassAssignments").First(&user, userID).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// CheckinBoard returns the live check-in status board, optionally scoped
// to one pickup area.
func CheckinBoard(c *gin.Context) {
	board, err := engine.CheckinBoard(c.Query("area_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, board)
}

// ClassCheckin returns the per-class check-in view. Class accounts may
// only see their assigned classes.
func ClassCheckin(c *gin.Context) {
	className := c.Param("class_name")

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !user.CanViewClass(className) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this class"})
		return
	}

	data, err := engine.ClassCheckinData(className)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// ListClassNames returns the distinct class names on the roster. Class
// accounts only see their assigned classes.
func ListClassNames(c *gin.Context) {
	names, err := engine.UniqueClassNames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if user.AccountType != models.AccountTypeAdmin {
		allowed := names[:0]
		for _, name := range names {
			if user.CanViewClass(name) {
				allowed = append(allowed, name)
			}
		}
		names = allowed
	}

	c.JSON(http.StatusOK, gin.H{"data": names})
}

// DashboardStats returns roster and route totals, optionally filtered to
// one class.
func DashboardStats(c *gin.Context) {
	stats, err := engine.Stats(c.Query("class"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RoutesByStatus lists route summaries in a given lifecycle state.
// "not_ready" is accepted as an alias for not_present.
func RoutesByStatus(c *gin.Context) {
	summaries, err := engine.RoutesByStatus(c.Param("status"), c.Query("class"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

// SafeguardingAlerts lists students on a route with safeguarding notes.
func SafeguardingAlerts(c *gin.Context) {
	students, err := engine.SafeguardingAlerts(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": students})
}

// PediatricFirstAidAlerts lists students on a route needing pediatric
// first aid cover.
func PediatricFirstAidAlerts(c *gin.Context) {
	students, err := engine.PediatricFirstAidAlerts(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Route not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": students})
}
