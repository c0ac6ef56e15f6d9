package repository

import (
	"strings"

	"github.com/pourhaus/pourhaus/app/models"
	"gorm.io/gorm"
)

// tierRepository implements the TierRepository interface
type tierRepository struct {
	db *gorm.DB
}

// NewTierRepository creates a new tier repository instance
func NewTierRepository(db *gorm.DB) TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) Create(tier *models.Tier) error {
	return r.db.Create(tier).Error
}

func (r *tierRepository) GetByID(id uint) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.First(&tier, id).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// GetByName retrieves a tier by its unique name, case-insensitively.
func (r *tierRepository) GetByName(name string) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// GetActive returns all active tiers in display order
func (r *tierRepository) GetActive() ([]models.Tier, error) {
	var tiers []models.Tier
	err := r.db.Where("is_active = ?", true).Order("display_order ASC, price_cents ASC").Find(&tiers).Error
	return tiers, err
}

// GetAll returns every tier regardless of active flag
func (r *tierRepository) GetAll() ([]models.Tier, error) {
	var tiers []models.Tier
	err := r.db.Order("display_order ASC, price_cents ASC").Find(&tiers).Error
	return tiers, err
}

func (r *tierRepository) Update(tier *models.Tier) error {
	return r.db.Save(tier).Error
}
