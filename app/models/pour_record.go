package models

import "time"

const (
	PourStatusRedeemed = "redeemed"
	PourStatusVoid     = "void"
)

// PourRecord is one append-only redemption against a customer's balance.
// The sum of redeemed quantities within a billing period is bounded by the
// tier's monthly allowance on the read path, not by a hard constraint.
type PourRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity" validate:"gt=0"`
	Status     string    `gorm:"type:varchar(20);not null;default:'redeemed';index" json:"status"`
	PouredBy   *uint     `gorm:"default:null" json:"poured_by,omitempty"`
	PouredAt   time.Time `gorm:"autoCreateTime;index" json:"poured_at"`
}
