package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Client statuses.
const (
	ClientStatusNewLead       = "new_lead"
	ClientStatusContacted     = "contacted"
	ClientStatusTourScheduled = "tour_scheduled"
	ClientStatusOfferMade     = "offer_made"
	ClientStatusClosed        = "closed"
	ClientStatusLost          = "lost"
)

// Client classifications.
const (
	ClassificationBuyer    = "buyer"
	ClassificationRenter   = "renter"
	ClassificationSeller   = "seller"
	ClassificationInvestor = "investor"
)

// Consultant statuses.
const (
	ConsultantStatusActive   = "active"
	ConsultantStatusInactive = "inactive"
	ConsultantStatusOnLeave  = "on_leave"
)

// Client is a prospect or customer of the consultancy. Deleted rows stay in
// history (soft delete).
type Client struct {
	ID             ClientID       `gorm:"primaryKey;size:64" json:"id"`
	Name           string         `gorm:"size:200;not null" json:"name"`
	Email          string         `gorm:"size:255;index" json:"email"`
	Phone          string         `gorm:"size:50" json:"phone"`
	Status         string         `gorm:"size:30;default:new_lead;index" json:"status"`
	Classification string         `gorm:"size:30;default:buyer" json:"classification"`
	Notes          string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Consultant is a member of the consulting staff.
type Consultant struct {
	ID        ConsultantID   `gorm:"primaryKey;size:64" json:"id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Email     string         `gorm:"size:255;index" json:"email"`
	Phone     string         `gorm:"size:50" json:"phone"`
	Specialty string         `gorm:"size:200" json:"specialty"`
	Status    string         `gorm:"size:30;default:active;index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HoursLog records time a consultant spent on a project. References are not
// enforced; logs may point at deleted projects.
type HoursLog struct {
	ID           string       `gorm:"primaryKey;size:64" json:"id"`
	ConsultantID ConsultantID `gorm:"size:64;index;not null" json:"consultant_id"`
	ProjectID    ProjectID    `gorm:"size:64;index;not null" json:"project_id"`
	Date         time.Time    `gorm:"index" json:"date"`
	Hours        float64      `gorm:"not null" json:"hours"`
	Description  string       `gorm:"type:text" json:"description"`
	CreatedAt    time.Time    `json:"created_at"`
}

// KVEntry is one JSON document of the durable key-value store.
type KVEntry struct {
	Key       string         `gorm:"primaryKey;size:191" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AuditLog records an admin write request.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:100;index" json:"action"`
	Method    string    `gorm:"size:10" json:"method"`
	Path      string    `gorm:"size:500" json:"path"`
	Status    int       `json:"status"`
	UserID    string    `gorm:"size:64;index" json:"user_id"`
	Role      string    `gorm:"size:20" json:"role"`
	IP        string    `gorm:"size:50" json:"ip"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Client) TableName() string     { return "clients" }
func (Consultant) TableName() string { return "consultants" }
func (HoursLog) TableName() string   { return "hours_logs" }
func (KVEntry) TableName() string    { return "kv_entries" }
func (AuditLog) TableName() string   { return "audit_logs" }

func ValidClientStatus(s string) bool {
	switch s {
	case ClientStatusNewLead, ClientStatusContacted, ClientStatusTourScheduled,
		ClientStatusOfferMade, ClientStatusClosed, ClientStatusLost:
		return true
	}
	return false
}

func ValidClassification(s string) bool {
	switch s {
	case ClassificationBuyer, ClassificationRenter, ClassificationSeller, ClassificationInvestor:
		return true
	}
	return false
}

func ValidConsultantStatus(s string) bool {
	switch s {
	case ConsultantStatusActive, ConsultantStatusInactive, ConsultantStatusOnLeave:
		return true
	}
	return false
}
