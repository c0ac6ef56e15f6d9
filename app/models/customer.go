package models

import "time"

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Customer is an active (or deactivated) paying member. It owns its
// Membership and PourRecords and holds the running pours balance. The
// secondary user is a weak reference by id: at most one secondary per
// customer, and a user may be the secondary of at most one customer.
type Customer struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	MemberNumber    string    `gorm:"type:char(36);uniqueIndex;not null" json:"member_number"`
	TierName        string    `gorm:"type:varchar(100);not null;index" json:"tier_name"`
	PoursBalance    int       `gorm:"not null;default:0" json:"pours_balance"`
	LifetimePours   int       `gorm:"not null;default:0" json:"lifetime_pours"`
	SecondaryUserID *uint     `gorm:"default:null;uniqueIndex" json:"secondary_user_id,omitempty"`
	Status          string    `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the customer may redeem pours.
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// HasSecondary reports whether a family member is linked.
func (c *Customer) HasSecondary() bool {
	return c.SecondaryUserID != nil && *c.SecondaryUserID != 0
}
