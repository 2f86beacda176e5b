package models

import "fmt"

type Contact struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	FullName    string `json:"full_name" gorm:"type:varchar(100);not null"`
	PhoneNumber string `json:"phone_number" gorm:"type:varchar(15);not null"`
	Position    string `json:"position" gorm:"type:varchar(100)"`
	CreatedByID *uint  `json:"created_by" gorm:"index"`
}

func (c *Contact) AuditLabel() string { return "Contact" }
func (c *Contact) AuditID() uint      { return c.ID }
func (c *Contact) OwnerID() *uint     { return c.CreatedByID }

func (c *Contact) String() string {
	return fmt.Sprintf("%s (%s)", c.FullName, c.PhoneNumber)
}
