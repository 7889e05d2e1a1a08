// internal/models/student.go
package models

import (
	"time"
)

// Student is a child on the transport roster. RouteID is nullable: an empty
// string means the student has no route and shows up in the "No Route" group
// on the class check-in view.
type Student struct {
	ID                        string    `json:"id" gorm:"primaryKey"`
	Name                      string    `json:"name" binding:"required" gorm:"not null"`
	ClassName                 string    `json:"class_name"`
	RouteID                   string    `json:"route_id" gorm:"index"`
	SchoolID                  string    `json:"school_id" gorm:"index"`
	Parent1Name               string    `json:"parent1_name"`
	Parent1Phone              string    `json:"parent1_phone"`
	Parent2Name               string    `json:"parent2_name"`
	Parent2Phone              string    `json:"parent2_phone"`
	Address                   string    `json:"address"`
	MedicalNeeds              bool      `json:"medical_needs"`
	RequiresPediatricFirstAid bool      `json:"requires_pediatric_first_aid"`
	MedicalNotes              string    `json:"medical_notes"`
	Harness                   string    `json:"harness"`
	SafeguardingNotes         string    `json:"safeguarding_notes"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}
