package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleScrumMaster = "scrum_master"
	RoleEmployee    = "employee"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"type:varchar(128);uniqueIndex:uk_email;not null" json:"email"`
	Password  string         `gorm:"type:varchar(128);not null" json:"-"`
	FirstName string         `gorm:"type:varchar(64)" json:"first_name"`
	LastName  string         `gorm:"type:varchar(64)" json:"last_name"`
	Role      string         `gorm:"type:varchar(20);not null;default:employee;index:idx_role" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsScrumMaster() bool { return u.Role == RoleScrumMaster }
func (u *User) IsEmployee() bool    { return u.Role == RoleEmployee }

// FullName falls back to the email local part when both name fields are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

type UserBrief struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{
		ID:    u.ID,
		Name:  u.FullName(),
		Email: u.Email,
		Role:  u.Role,
	}
}
