package models

// CitizenCharter describes one public service offered by the office.
type CitizenCharter struct {
	ID                 uint   `json:"id" gorm:"primaryKey"`
	ServiceName        string `json:"service_name" gorm:"type:varchar(200);not null"`
	RequiredDocs       string `json:"required_docs" gorm:"type:text;not null"`
	ServiceTime        string `json:"service_time" gorm:"type:varchar(100)"`
	ServiceFee         string `json:"service_fee" gorm:"type:varchar(100)"`
	ResponsibleOfficer string `json:"responsible_officer" gorm:"type:varchar(100)"`
	CreatedByID        *uint  `json:"created_by" gorm:"index"`
}

func (c *CitizenCharter) AuditLabel() string { return "Citizen Charter" }
func (c *CitizenCharter) AuditID() uint      { return c.ID }
func (c *CitizenCharter) String() string     { return c.ServiceName }
func (c *CitizenCharter) OwnerID() *uint     { return c.CreatedByID }
