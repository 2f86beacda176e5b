package models

import (
	"fmt"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const (
	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(255)"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150)"`
	LastName     string    `json:"last_name" gorm:"type:varchar(150)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         string    `json:"role" gorm:"type:varchar(20);default:'user'"` // admin, user
	IsSuperuser  bool      `json:"is_superuser" gorm:"default:false"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	ThemeMode    string    `json:"theme_mode" gorm:"type:varchar(10);default:'light'"`
	FontSize     string    `json:"font_size" gorm:"type:varchar(10);default:'medium'"`
	PhoneNumber  string    `json:"phone_number" gorm:"type:varchar(15)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) AuditLabel() string { return "User" }
func (u *User) AuditID() uint      { return u.ID }

func (u *User) String() string {
	return fmt.Sprintf("%s (%s)", u.Username, RoleDisplay(u.Role))
}

// RoleDisplay returns the human readable name of a role.
func RoleDisplay(role string) string {
	switch role {
	case RoleAdmin:
		return "System Admin"
	case RoleUser:
		return "User"
	default:
		return role
	}
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

func IsValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}

func IsValidFontSize(size string) bool {
	return size == FontSmall || size == FontMedium || size == FontLarge
}

type Session struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Token     string    `json:"-" gorm:"type:varchar(500);uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
