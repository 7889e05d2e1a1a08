package routes

import (
	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/broadcast"
)

func WebSocketRoutes(r *gin.Engine, hub *broadcast.Hub) {
	wsRoutes := r.Group("/ws")
	{
		wsRoutes.GET("/board", hub.ServeWS)
	}
}
