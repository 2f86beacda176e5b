package models

import "time"

// TickerMessage is a short announcement scrolled along the bottom of the displays.
type TickerMessage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	Order       uint      `json:"order" gorm:"column:sort_order;default:0"`
	CreatedByID *uint     `json:"created_by" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *TickerMessage) AuditLabel() string { return "Ticker Message" }
func (t *TickerMessage) AuditID() uint      { return t.ID }
func (t *TickerMessage) OwnerID() *uint     { return t.CreatedByID }

func (t *TickerMessage) String() string {
	runes := []rune(t.Content)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return t.Content
}
