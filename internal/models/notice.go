package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PriorityNormal    = "normal"
	PriorityHigh      = "high"
	PriorityEmergency = "emergency"
)

const (
	NoticeStatusDraft       = "draft"
	NoticeStatusRecommended = "recommended"
	NoticeStatusApproved    = "approved"
	NoticeStatusPublished   = "published"
	NoticeStatusExpired     = "expired"
)

type Notice struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Title    string `json:"title" gorm:"type:varchar(255);not null"`
	Content  string `json:"content" gorm:"type:text;not null"`
	Priority string `json:"priority" gorm:"type:varchar(20);default:'normal'"`
	Status   string `json:"status" gorm:"type:varchar(20);default:'draft';index"`

	TargetDevices []Device `json:"target_devices" gorm:"many2many:notice_target_devices;"`

	CreatedByID     *uint `json:"created_by" gorm:"index"`
	RecommendedByID *uint `json:"recommended_by"`
	ApprovedByID    *uint `json:"approved_by"`

	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PublishedDate *time.Time `json:"published_date" gorm:"index"`
	// ExpiryDate holds a calendar date at midnight UTC.
	ExpiryDate *time.Time `json:"expiry_date"`
}

func (n *Notice) AuditLabel() string { return "Notice" }
func (n *Notice) AuditID() uint      { return n.ID }
func (n *Notice) String() string     { return n.Title }

// BeforeSave stamps the publish time of a notice saved as published without one.
func (n *Notice) BeforeSave(tx *gorm.DB) error {
	if n.Status == NoticeStatusPublished && n.PublishedDate == nil {
		now := time.Now()
		n.PublishedDate = &now
	}
	return nil
}

func (n *Notice) OwnerID() *uint { return n.CreatedByID }

func IsValidPriority(p string) bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

func IsValidNoticeStatus(s string) bool {
	switch s {
	case NoticeStatusDraft, NoticeStatusRecommended, NoticeStatusApproved, NoticeStatusPublished, NoticeStatusExpired:
		return true
	}
	return false
}
