package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Tier is a named subscription level. Tiers are admin-managed and read-only
// for every other component at runtime. A nil Capacity means the tier has no
// cap on concurrent active memberships.
type Tier struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required,min=2,max=100"`
	PriceCents     int64     `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	MonthlyPours   int       `gorm:"not null;default:0" json:"monthly_pours" validate:"gte=0"`
	Capacity       *int      `gorm:"default:null" json:"capacity,omitempty"`
	Description    string    `gorm:"type:text" json:"description"`
	IsActive       bool      `gorm:"default:true;index" json:"is_active"`
	ProviderPrice  string    `gorm:"type:varchar(191);default:''" json:"provider_price_ref"`
	DisplayOrder   int       `gorm:"default:0" json:"display_order"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Tier) Validate() error {
	v := validator.New()

	return v.Struct(t)
}
