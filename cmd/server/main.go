package main

import (
	"log"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"hamilton_tms/internal/broadcast"
	"hamilton_tms/internal/config"
	"hamilton_tms/internal/controllers"
	"hamilton_tms/internal/dispatch"
	"hamilton_tms/internal/logger"
	"hamilton_tms/internal/middleware"
	"hamilton_tms/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Select the entity store backend
	st, err := config.NewStore()
	if err != nil {
		log.Fatalf("store setup failed: %v", err)
	}

	engine := dispatch.NewEngine(st)

	// Split any collision parent routes left behind by older versions
	// before serving traffic. The pass is idempotent.
	report, err := engine.RepairConsolidatedRoutes()
	if err != nil {
		log.Fatalf("parent route repair failed: %v", err)
	}
	if report.CollisionRoutes > 0 {
		logrus.WithFields(logrus.Fields{
			"collision_routes": report.CollisionRoutes,
			"routes_created":   report.RoutesCreated,
			"students_moved":   report.StudentsMoved,
			"routes_deleted":   report.RoutesDeleted,
		}).Info("parent route repair completed at startup")
	}

	hub := broadcast.NewHub()
	controllers.Init(engine, hub)

	// Setup Gin router
	r := routes.SetupRouter(hub)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server running at :%s", port)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, handler))
}
