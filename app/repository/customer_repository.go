package repository

import (
	"errors"

	"github.com/pourhaus/pourhaus/app/models"
	"gorm.io/gorm"
)

// customerRepository implements the CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository instance
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByUserID retrieves the customer owned by the given user
func (r *customerRepository) GetByUserID(userID uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("user_id = ?", userID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetBySecondaryUserID retrieves the customer the given user is linked to
// as a family member
func (r *customerRepository) GetBySecondaryUserID(userID uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("secondary_user_id = ?", userID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

func (r *customerRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Customer{}).Where("id = ?", id).
		Update("status", status).Error
}

// IncrementPours adds the given amount to the pours balance in a single
// atomic UPDATE. Concurrent invoice events for the same customer cannot
// lose an increment this way.
func (r *customerRepository) IncrementPours(id uint, amount int) error {
	if amount <= 0 {
		return errors.New("increment amount must be positive")
	}
	tx := r.db.Model(&models.Customer{}).Where("id = ?", id).
		Update("pours_balance", gorm.Expr("pours_balance + ?", amount))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RedeemPours decrements the balance and bumps the lifetime counter, guarded
// so the balance can never go negative. Returns false when the balance was
// insufficient.
func (r *customerRepository) RedeemPours(id uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, errors.New("redeem quantity must be positive")
	}
	tx := r.db.Model(&models.Customer{}).
		Where("id = ? AND pours_balance >= ?", id, quantity).
		Updates(map[string]interface{}{
			"pours_balance":  gorm.Expr("pours_balance - ?", quantity),
			"lifetime_pours": gorm.Expr("lifetime_pours + ?", quantity),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// LinkSecondaryUser sets the secondary user in a single conditional UPDATE
// so two concurrent invitations cannot both take the slot. Returns false
// when the customer already has a secondary user.
func (r *customerRepository) LinkSecondaryUser(customerID, userID uint) (bool, error) {
	tx := r.db.Model(&models.Customer{}).
		Where("id = ? AND secondary_user_id IS NULL", customerID).
		Update("secondary_user_id", userID)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// UnlinkSecondaryUser clears the secondary user unconditionally
func (r *customerRepository) UnlinkSecondaryUser(customerID uint) error {
	return r.db.Model(&models.Customer{}).Where("id = ?", customerID).
		Update("secondary_user_id", nil).Error
}

func (r *customerRepository) List(offset, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&customers).Error
	return customers, err
}

// CountActiveByTier counts active customers on the given tier via their
// active membership rows
func (r *customerRepository) CountActiveByTier(tierName string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("tier_name = ? AND status = ?", tierName, models.MembershipStatusActive).
		Count(&count).Error
	return count, err
}

func (r *customerRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Customer{}).Count(&count).Error
	return count, err
}
