package models

import "time"

const (
	ActionCreated = "Created"
	ActionUpdated = "Updated"
	ActionDeleted = "Deleted"
)

// AuditLog is an append-only record of a mutation. Rows are written by the audit
// observer only.
type AuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Action    string    `json:"action" gorm:"type:varchar(50);not null"`
	ModelName string    `json:"model_name" gorm:"type:varchar(50);not null"`
	ObjectID  string    `json:"object_id" gorm:"type:varchar(50)"`
	Details   string    `json:"details" gorm:"type:text"`
	IPAddress string    `json:"ip_address" gorm:"type:varchar(45)"`
	RequestID string    `json:"request_id" gorm:"type:varchar(64)"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
}
