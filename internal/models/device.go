package models

import "time"

// Device is a physical display board that plays notices.
type Device struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Name                string     `json:"name" gorm:"type:varchar(100);not null"`
	IPAddress           string     `json:"ip_address" gorm:"type:varchar(45)"`
	LocationDescription string     `json:"location_description" gorm:"type:varchar(200)"`
	IsActive            bool       `json:"is_active" gorm:"default:true"`
	LastSeen            *time.Time `json:"last_seen"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (d *Device) AuditLabel() string { return "Device" }
func (d *Device) AuditID() uint      { return d.ID }
func (d *Device) String() string     { return d.Name }
