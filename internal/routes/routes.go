package routes

import (
	"github.com/gin-gonic/gin"

	ginlog "github.com/gin-contrib/logger"

	"hamilton_tms/internal/broadcast"
)

// SetupRouter builds the Gin engine and registers all route groups. Global
// middleware must be attached before any route is registered; gin snapshots
// each route's handler chain at registration time. The caller wraps the
// result with CORS and serves it.
func SetupRouter(hub *broadcast.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r)
	AdminRoutes(r)
	CheckinRoutes(r)
	WebSocketRoutes(r, hub)

	return r
}
