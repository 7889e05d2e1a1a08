package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/models"
)

// CreateProvider registers a new transport provider
func CreateProvider(c *gin.Context) {
	var input models.Provider
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := engine.Store().CreateProvider(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create provider: " + err.Error()})
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save provider: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"provider": input})
}

// GetProvider retrieves a provider by ID
func GetProvider(c *gin.Context) {
	provider, err := engine.Store().GetProvider(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Provider not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": provider})
}

// ListProviders lists all providers
func ListProviders(c *gin.Context) {
	providers, err := engine.Store().GetAllProviders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch providers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": providers})
}

// UpdateProvider modifies an existing provider
func UpdateProvider(c *gin.Context) {
	provider, err := engine.Store().GetProvider(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Provider not found")
		return
	}

	var input struct {
		Name        *string `json:"name"`
		ContactName *string `json:"contact_name"`
		Phone       *string `json:"phone"`
		Email       *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		provider.Name = *input.Name
	}
	if input.ContactName != nil {
		provider.ContactName = *input.ContactName
	}
	if input.Phone != nil {
		provider.Phone = *input.Phone
	}
	if input.Email != nil {
		provider.Email = *input.Email
	}

	if err := engine.Store().UpdateProvider(provider); err != nil {
		respondStoreError(c, err, "Provider not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save provider: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": provider})
}

// DeleteProvider removes a provider by ID
func DeleteProvider(c *gin.Context) {
	if err := engine.Store().DeleteProvider(c.Param("id")); err != nil {
		respondStoreError(c, err, "Provider not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete provider"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Provider deleted"})
}
