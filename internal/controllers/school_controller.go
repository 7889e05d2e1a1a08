package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/models"
)

// CreateSchool registers a new school
func CreateSchool(c *gin.Context) {
	var input models.School
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := engine.Store().CreateSchool(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create school: " + err.Error()})
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save school: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"school": input})
}

// GetSchool retrieves a school by ID
func GetSchool(c *gin.Context) {
	school, err := engine.Store().GetSchool(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "School not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"school": school})
}

// ListSchools lists all schools
func ListSchools(c *gin.Context) {
	schools, err := engine.Store().GetAllSchools()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch schools"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schools})
}

// UpdateSchool modifies an existing school
func UpdateSchool(c *gin.Context) {
	school, err := engine.Store().GetSchool(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "School not found")
		return
	}

	var input struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
		Phone   *string `json:"phone"`
		Email   *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		school.Name = *input.Name
	}
	if input.Address != nil {
		school.Address = *input.Address
	}
	if input.Phone != nil {
		school.Phone = *input.Phone
	}
	if input.Email != nil {
		school.Email = *input.Email
	}

	if err := engine.Store().UpdateSchool(school); err != nil {
		respondStoreError(c, err, "School not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save school: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"school": school})
}

// DeleteSchool removes a school and cascades to its routes
func DeleteSchool(c *gin.Context) {
	if err := engine.Store().DeleteSchool(c.Param("id")); err != nil {
		respondStoreError(c, err, "School not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete school"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "School deleted"})
}
