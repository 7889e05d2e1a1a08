package routes

import (
	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/controllers"
	"hamilton_tms/internal/middleware"
)

// CheckinRoutes registers the live dispatch surface used by staff on
// check-in boards. Any authenticated account may drive statuses; class
// accounts are restricted to their assigned classes by the handlers.
func CheckinRoutes(r *gin.Engine) {
	checkin := r.Group("/checkin")
	checkin.Use(middleware.RequireAuth())
	{
		checkin.GET("/board", controllers.CheckinBoard)
		checkin.GET("/classes", controllers.ListClassNames)
		checkin.GET("/classes/:class_name", controllers.ClassCheckin)
		checkin.GET("/stats", controllers.DashboardStats)
		checkin.GET("/status/:status", controllers.RoutesByStatus)

		checkin.POST("/routes/:id/status", controllers.SetRouteStatus)
		checkin.POST("/routes/:id/cycle", controllers.CycleRouteStatus)
		checkin.POST("/routes/:id/guide", controllers.ToggleRouteGuide)
		checkin.GET("/routes/:id/safeguarding", controllers.SafeguardingAlerts)
		checkin.GET("/routes/:id/pediatric-first-aid", controllers.PediatricFirstAidAlerts)
	}
}
