package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleEmployee = "employee"

	AddressShipping = "shipping"
	AddressBilling  = "billing"
)

// User represents a storefront account (customer or employee)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FirstName    string         `gorm:"not null" json:"first_name"`
	LastName     string         `gorm:"not null" json:"last_name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Mobile       string         `json:"mobile"`
	DateOfBirth  *time.Time     `json:"date_of_birth"`
	Role         string         `gorm:"not null;default:'customer'" json:"role"` // "customer" or "employee"
	Addresses    []Address      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsEmployee reports whether the user may use the staff views
func (u User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

// Address is a shipping or billing address; a user has at most one of each type
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_address_user_type" json:"user_id"`
	Type      string    `gorm:"not null;uniqueIndex:idx_address_user_type" json:"type"` // "shipping" or "billing"
	Address   string    `gorm:"type:text;not null" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}

// IsValidRole reports whether role is one of the known account roles
func IsValidRole(role string) bool {
	return role == RoleCustomer || role == RoleEmployee
}
