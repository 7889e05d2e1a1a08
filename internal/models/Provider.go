// internal/models/provider.go
package models

import (
	"strings"
	"time"
)

// ParentProviderName marks the pseudo-provider used for parent collection.
// Routes under it represent children collected by a parent, not a vehicle run.
const ParentProviderName = "Parent"

// Provider represents a transport company responsible for one or more routes.
// Names are unique by convention only; the store does not enforce it.
type Provider struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" binding:"required" gorm:"not null"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsParent reports whether this provider is the parent-collection
// pseudo-provider, matched case-insensitively by name.
func (p *Provider) IsParent() bool {
	return strings.EqualFold(p.Name, ParentProviderName)
}
