package models

import (
	"time"
)

// Staff account types.
const (
	AccountTypeAdmin = "admin"
	AccountTypeClass = "class"
)

// User is a staff login identity. Class accounts are restricted to the
// class names listed in ClassAssignments; admin accounts see everything.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	AccountType  string    `json:"account_type" gorm:"default:class"`
	Active       bool      `json:"active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	ClassAssignments []StaffClassAssignment `json:"class_assignments,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// StaffClassAssignment grants a class account access to one class name,
// e.g. "3A" or "Reception".
type StaffClassAssignment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	ClassName string    `json:"class_name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignedClasses returns the class names this user may view.
func (u *User) AssignedClasses() []string {
	names := make([]string, 0, len(u.ClassAssignments))
	for _, a := range u.ClassAssignments {
		names = append(names, a.ClassName)
	}
	return names
}

// CanViewClass reports whether the user may see check-in data for className.
func (u *User) CanViewClass(className string) bool {
	if u.AccountType == AccountTypeAdmin {
		return true
	}
	for _, a := range u.ClassAssignments {
		if a.ClassName == className {
			return true
		}
	}
	return false
}
