package models

import (
	"time"
)

// School owns routes and pickup areas. IDs are UUID strings so the same
// records can live in either storage backend.
type School struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" binding:"required" gorm:"not null"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
