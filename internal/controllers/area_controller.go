package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/models"
)

// CreateArea registers a new pickup area
func CreateArea(c *gin.Context) {
	var input models.Area
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := engine.Store().CreateArea(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create area: " + err.Error()})
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save area: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"area": input})
}

// GetArea retrieves an area by ID
func GetArea(c *gin.Context) {
	area, err := engine.Store().GetArea(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Area not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": area})
}

// ListAreas lists all pickup areas
func ListAreas(c *gin.Context) {
	areas, err := engine.Store().GetAllAreas()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch areas"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": areas})
}

// UpdateArea modifies an existing area
func UpdateArea(c *gin.Context) {
	area, err := engine.Store().GetArea(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Area not found")
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		SchoolID    *string `json:"school_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		area.Name = *input.Name
	}
	if input.Description != nil {
		area.Description = *input.Description
	}
	if input.SchoolID != nil {
		area.SchoolID = *input.SchoolID
	}

	if err := engine.Store().UpdateArea(area); err != nil {
		respondStoreError(c, err, "Area not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save area: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": area})
}

// DeleteArea removes an area by ID
func DeleteArea(c *gin.Context) {
	if err := engine.Store().DeleteArea(c.Param("id")); err != nil {
		respondStoreError(c, err, "Area not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete area"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Area deleted"})
}
