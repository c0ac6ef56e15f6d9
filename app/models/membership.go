package models

import "time"

const (
	MembershipStatusActive    = "active"
	MembershipStatusCancelled = "cancelled"
)

// Billing provider constants used across billing-related models.
const (
	BillingProviderStripe = "stripe"
)

// Membership tracks the billing side of a Customer: the external provider
// subscription and its current billing period. One active membership per
// customer at a time.
type Membership struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	CustomerID             uint       `gorm:"not null;index" json:"customer_id"`
	TierName               string     `gorm:"type:varchar(100);not null;index" json:"tier_name"`
	Provider               string     `gorm:"type:varchar(20);not null;default:'stripe';index:ux_memberships_provider_subid,unique,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_memberships_provider_subid,unique,priority:2" json:"provider_subscription_id"`
	CurrentPeriodStart     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
