package routes

import (
	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/controllers"
	"hamilton_tms/internal/middleware"
)

// AdminRoutes registers the management surface: entity CRUD, student
// assignment, CSV import and the maintenance endpoints.
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.POST("/schools", controllers.CreateSchool)
		admin.GET("/schools", controllers.ListSchools)
		admin.GET("/schools/:id", controllers.GetSchool)
		admin.PUT("/schools/:id", controllers.UpdateSchool)
		admin.DELETE("/schools/:id", controllers.DeleteSchool)

		admin.POST("/providers", controllers.CreateProvider)
		admin.GET("/providers", controllers.ListProviders)
		admin.GET("/providers/:id", controllers.GetProvider)
		admin.PUT("/providers/:id", controllers.UpdateProvider)
		admin.DELETE("/providers/:id", controllers.DeleteProvider)

		admin.POST("/areas", controllers.CreateArea)
		admin.GET("/areas", controllers.ListAreas)
		admin.GET("/areas/:id", controllers.GetArea)
		admin.PUT("/areas/:id", controllers.UpdateArea)
		admin.DELETE("/areas/:id", controllers.DeleteArea)

		admin.POST("/routes", controllers.CreateRoute)
		admin.GET("/routes", controllers.ListRoutes)
		admin.GET("/routes/:id", controllers.GetRoute)
		admin.PUT("/routes/:id", controllers.UpdateRoute)
		admin.DELETE("/routes/:id", controllers.DeleteRoute)
		admin.GET("/routes/:id/students", controllers.RouteStudents)
		admin.POST("/routes/:id/students", controllers.AssignStudentsToRoute)
		admin.POST("/routes/reset", controllers.ResetRouteStatuses)
		admin.POST("/routes/bulk-status", controllers.BulkSetRouteStatus)

		admin.POST("/students", controllers.CreateStudent)
		admin.GET("/students", controllers.ListStudents)
		admin.GET("/students/:id", controllers.GetStudent)
		admin.PUT("/students/:id", controllers.UpdateStudent)
		admin.DELETE("/students/:id", controllers.DeleteStudent)
		admin.PUT("/students/:id/pickup-area", controllers.UpdateStudentPickupArea)
		admin.DELETE("/students/:id/route", controllers.RemoveStudentFromRoute)

		admin.GET("/students/duplicates", controllers.ListDuplicateStudents)
		admin.GET("/students/name-duplicates", controllers.ListNameDuplicateStudents)
		admin.POST("/students/duplicates/remove", controllers.RemoveDuplicateStudents)
		admin.POST("/students/name-duplicates/remove", controllers.RemoveNameDuplicateStudents)

		admin.POST("/csv/students", controllers.UploadStudentsCSV)
		admin.POST("/csv/routes", controllers.UploadRoutesCSV)
		admin.GET("/csv/students/template", controllers.DownloadStudentsTemplate)
		admin.GET("/csv/routes/template", controllers.DownloadRoutesTemplate)

		admin.POST("/maintenance/repair-parent-routes", controllers.RepairConsolidatedRoutes)
		admin.POST("/maintenance/sweep-orphaned-routes", controllers.SweepOrphanedSyntheticRoutes)

		admin.GET("/users", controllers.ListUsers)
		admin.PUT("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)
	}
}
