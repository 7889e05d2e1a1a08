package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/csvimport"
)

// readUploadedCSV pulls the "file" form field out of a multipart upload.
func readUploadedCSV(c *gin.Context) (string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not open uploaded file"})
		return "", false
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read uploaded file"})
		return "", false
	}
	return string(content), true
}

// UploadStudentsCSV imports a student roster CSV. Per-row failures are
// reported alongside the successes; the upload never fails wholesale.
func UploadStudentsCSV(c *gin.Context) {
	content, ok := readUploadedCSV(c)
	if !ok {
		return
	}

	result := csvimport.ImportStudents(engine, content)
	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"errors":  result.Errors,
	})
}

// UploadRoutesCSV imports a route list CSV, creating providers and areas
// as needed.
func UploadRoutesCSV(c *gin.Context) {
	content, ok := readUploadedCSV(c)
	if !ok {
		return
	}

	result := csvimport.ImportRoutes(engine, content)
	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"errors":  result.Errors,
	})
}

// DownloadStudentsTemplate serves the student CSV template.
func DownloadStudentsTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="students_template.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(csvimport.StudentsTemplate()))
}

// DownloadRoutesTemplate serves the route CSV template.
func DownloadRoutesTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="routes_template.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(csvimport.RoutesTemplate()))
}
