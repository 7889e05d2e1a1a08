package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RepairConsolidatedRoutes splits collision parent routes that accumulated
// multiple unrelated children back into per-child routes. Safe to run
// repeatedly; it also runs once at startup.
func RepairConsolidatedRoutes(c *gin.Context) {
	report, err := engine.RepairConsolidatedRoutes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"collision_routes": report.CollisionRoutes,
		"routes_created":   report.RoutesCreated,
		"students_moved":   report.StudentsMoved,
		"routes_deleted":   report.RoutesDeleted,
	}).Info("parent route repair run via API")

	hub.PublishReset("")
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// SweepOrphanedSyntheticRoutes deletes per-child parent routes that no
// longer have any student pointing at them.
func SweepOrphanedSyntheticRoutes(c *gin.Context) {
	removed, err := engine.SweepOrphanedSyntheticRoutes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
