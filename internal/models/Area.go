package models

import (
	"time"
)

// MultipleAreasName is a sentinel area meaning "this route spans more than
// one physical area". Routes in it are excluded from per-area filtering and
// from area-based statistics.
const MultipleAreasName = "Multiple areas"

// Area represents a physical pickup/drop-off location at a school.
type Area struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" binding:"required" gorm:"not null"`
	Description string    `json:"description"`
	SchoolID    string    `json:"school_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsMultiple reports whether this is the multi-area sentinel.
func (a *Area) IsMultiple() bool {
	return a.Name == MultipleAreasName
}
