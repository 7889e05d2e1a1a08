package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hamilton_tms/internal/dispatch"
	"hamilton_tms/internal/models"
)

// CreateStudent adds a student to the roster. Duplicate name+class pairs
// are rejected; medical-needs consistency is applied by the engine.
func CreateStudent(c *gin.Context) {
	var input models.Student
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := engine.CreateStudent(&input); err != nil {
		var dup *dispatch.DuplicateIdentityError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, gin.H{"error": dup.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create student: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"student": input})
}

// GetStudent retrieves a student by ID
func GetStudent(c *gin.Context) {
	student, err := engine.Store().GetStudent(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Student not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student})
}

// ListStudents lists the full roster
func ListStudents(c *gin.Context) {
	students, err := engine.Store().GetAllStudents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch students"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": students})
}

// UpdateStudent modifies a student. Route assignment is not editable here,
// it goes through the route assignment endpoints.
func UpdateStudent(c *gin.Context) {
	student, err := engine.Store().GetStudent(c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Student not found")
		return
	}

	var input struct {
		Name                      *string `json:"name"`
		ClassName                 *string `json:"class_name"`
		SchoolID                  *string `json:"school_id"`
		Parent1Name               *string `json:"parent1_name"`
		Parent1Phone              *string `json:"parent1_phone"`
		Parent2Name               *string `json:"parent2_name"`
		Parent2Phone              *string `json:"parent2_phone"`
		Address                   *string `json:"address"`
		MedicalNeeds              *bool   `json:"medical_needs"`
		RequiresPediatricFirstAid *bool   `json:"requires_pediatric_first_aid"`
		MedicalNotes              *string `json:"medical_notes"`
		Harness                   *string `json:"harness"`
		SafeguardingNotes         *string `json:"safeguarding_notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		student.Name = *input.Name
	}
	if input.ClassName != nil {
		student.ClassName = *input.ClassName
	}
	if input.SchoolID != nil {
		student.SchoolID = *input.SchoolID
	}
	if input.Parent1Name != nil {
		student.Parent1Name = *input.Parent1Name
	}
	if input.Parent1Phone != nil {
		student.Parent1Phone = *input.Parent1Phone
	}
	if input.Parent2Name != nil {
		student.Parent2Name = *input.Parent2Name
	}
	if input.Parent2Phone != nil {
		student.Parent2Phone = *input.Parent2Phone
	}
	if input.Address != nil {
		student.Address = *input.Address
	}
	if input.MedicalNeeds != nil {
		student.MedicalNeeds = *input.MedicalNeeds
	}
	if input.RequiresPediatricFirstAid != nil {
		student.RequiresPediatricFirstAid = *input.RequiresPediatricFirstAid
	}
	if input.MedicalNotes != nil {
		student.MedicalNotes = *input.MedicalNotes
	}
	if input.Harness != nil {
		student.Harness = *input.Harness
	}
	if input.SafeguardingNotes != nil {
		student.SafeguardingNotes = *input.SafeguardingNotes
	}

	if err := engine.UpdateStudent(student); err != nil {
		respondStoreError(c, err, "Student not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student})
}

// DeleteStudent removes a student from the roster.
func DeleteStudent(c *gin.Context) {
	if err := engine.Store().DeleteStudent(c.Param("id")); err != nil {
		respondStoreError(c, err, "Student not found")
		return
	}
	if err := engine.Store().Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

// UpdateStudentPickupArea changes the pickup area on a parent-collected
// student's synthetic route, creating the route if the student is not yet
// under parent collection.
func UpdateStudentPickupArea(c *gin.Context) {
	var body struct {
		AreaID string `json:"area_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := engine.UpdatePickupArea(c.Param("id"), body.AreaID)
	if err != nil {
		respondStoreError(c, err, "Student not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// ListDuplicateStudents groups students sharing a name and class.
func ListDuplicateStudents(c *gin.Context) {
	groups, err := engine.FindAllDuplicates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// ListNameDuplicateStudents groups students sharing a name across classes.
func ListNameDuplicateStudents(c *gin.Context) {
	groups, err := engine.FindNameDuplicates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// RemoveDuplicateStudents deletes all but the oldest record in each
// name+class duplicate group.
func RemoveDuplicateStudents(c *gin.Context) {
	removed, err := engine.RemoveDuplicateStudents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// RemoveNameDuplicateStudents deletes all but the oldest record in each
// name-only duplicate group.
func RemoveNameDuplicateStudents(c *gin.Context) {
	removed, err := engine.RemoveNameDuplicates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
