package models

import "time"

const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusApproved  = "approved"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusCompleted = "completed"
)

// Application is one prospective member's request for a tier. It is created
// on submission and mutated only by staff review or the billing webhook on
// successful checkout.
type Application struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	TierName   string     `gorm:"type:varchar(100);not null;index" json:"tier_name"`
	Status     string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes"`
	ReviewedBy *uint      `gorm:"default:null" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `gorm:"type:timestamp;default:null" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the application has left the review pipeline.
func (a *Application) IsTerminal() bool {
	switch a.Status {
	case ApplicationStatusRejected, ApplicationStatusCompleted:
		return true
	default:
		return false
	}
}
