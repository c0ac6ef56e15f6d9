package repository

import (
	"time"

	"github.com/pourhaus/pourhaus/app/models"
	"gorm.io/gorm"
)

// pourRepository implements the PourRepository interface
type pourRepository struct {
	db *gorm.DB
}

// NewPourRepository creates a new pour ledger repository instance
func NewPourRepository(db *gorm.DB) PourRepository {
	return &pourRepository{db: db}
}

func (r *pourRepository) Create(record *models.PourRecord) error {
	return r.db.Create(record).Error
}

func (r *pourRepository) ListByCustomerID(customerID uint, offset, limit int) ([]models.PourRecord, error) {
	var records []models.PourRecord
	err := r.db.Where("customer_id = ?", customerID).
		Offset(offset).Limit(limit).Order("poured_at DESC").Find(&records).Error
	return records, err
}

// SumRedeemedInPeriod totals redeemed quantities inside a billing period.
// Void records do not count against the allowance.
func (r *pourRepository) SumRedeemedInPeriod(customerID uint, start, end time.Time) (int, error) {
	var total int64
	err := r.db.Model(&models.PourRecord{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("customer_id = ? AND status = ? AND poured_at >= ? AND poured_at < ?",
			customerID, models.PourStatusRedeemed, start, end).
		Scan(&total).Error
	return int(total), err
}

func (r *pourRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.PourRecord{}).
		Where("status = ? AND poured_at >= ?", models.PourStatusRedeemed, since).
		Count(&count).Error
	return count, err
}
