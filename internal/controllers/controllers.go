// Package controllers holds the Gin HTTP handlers. Entity handlers go
// through the dispatch engine and its store; staff account handlers talk to
// the database directly.
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/broadcast"
	"hamilton_tms/internal/dispatch"
	"hamilton_tms/internal/store"
)

var (
	engine *dispatch.Engine
	hub    *broadcast.Hub
)

// Init wires the handlers to the dispatch engine and event hub. Call once
// at startup before registering routes.
func Init(e *dispatch.Engine, h *broadcast.Hub) {
	engine = e
	hub = h
}

// respondStoreError maps store errors to HTTP responses using a caller
// supplied not-found message.
func respondStoreError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
