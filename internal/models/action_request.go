package models

import (
	"fmt"
	"time"
)

const (
	RequestTypeEdit   = "edit"
	RequestTypeDelete = "delete"
)

const (
	RequestStatusPending   = "pending"
	RequestStatusCompleted = "completed"
)

// ActionRequest is a non-admin's request for an admin to edit or delete a record.
type ActionRequest struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	User        *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ModelName   string    `json:"model_name" gorm:"type:varchar(100);not null"`
	ObjectID    uint      `json:"object_id" gorm:"not null"`
	ObjectTitle string    `json:"object_title" gorm:"type:varchar(255)"`
	RequestType string    `json:"request_type" gorm:"type:varchar(20);not null"`
	Reason      string    `json:"reason" gorm:"type:text;not null"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (r *ActionRequest) String() string {
	username := ""
	if r.User != nil {
		username = r.User.Username
	}
	return fmt.Sprintf("%s - %s - %s", username, RequestTypeDisplay(r.RequestType), r.ObjectTitle)
}

func RequestTypeDisplay(t string) string {
	switch t {
	case RequestTypeEdit:
		return "Edit"
	case RequestTypeDelete:
		return "Delete"
	default:
		return t
	}
}
