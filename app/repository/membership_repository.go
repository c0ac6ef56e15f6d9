package repository

import (
	"strings"
	"time"

	"github.com/pourhaus/pourhaus/app/models"
	"gorm.io/gorm"
)

// membershipRepository implements the MembershipRepository interface
type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository instance
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(membership *models.Membership) error {
	return r.db.Create(membership).Error
}

func (r *membershipRepository) GetByID(id uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.First(&membership, id).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetByProviderSubscriptionID resolves the external subscription id the
// billing provider sends in webhook events
func (r *membershipRepository) GetByProviderSubscriptionID(provider, subscriptionID string) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Where("provider = ? AND provider_subscription_id = ?",
		strings.ToLower(strings.TrimSpace(provider)), strings.TrimSpace(subscriptionID)).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) GetActiveByCustomerID(customerID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Where("customer_id = ? AND status = ?", customerID, models.MembershipStatusActive).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) Update(membership *models.Membership) error {
	return r.db.Save(membership).Error
}

func (r *membershipRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Membership{}).Where("id = ?", id).
		Update("status", status).Error
}

// UpdatePeriod refreshes the billing period bounds after a recurring payment
func (r *membershipRepository) UpdatePeriod(id uint, start, end *time.Time) error {
	return r.db.Model(&models.Membership{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_period_start": start,
			"current_period_end":   end,
		}).Error
}
