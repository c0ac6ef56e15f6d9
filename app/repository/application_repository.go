package repository

import (
	"time"

	"github.com/pourhaus/pourhaus/app/models"
	"gorm.io/gorm"
)

// applicationRepository implements the ApplicationRepository interface
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository instance
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(app *models.Application) error {
	return r.db.Create(app).Error
}

func (r *applicationRepository) GetByID(id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetPendingByUserID returns the user's open application, if any.
func (r *applicationRepository) GetPendingByUserID(userID uint) (*models.Application, error) {
	var app models.Application
	err := r.db.Where("user_id = ? AND status = ?", userID, models.ApplicationStatusPending).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByStatus(status string, offset, limit int) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.Where("status = ?", status).Offset(offset).Limit(limit).Order("created_at ASC").Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) List(offset, limit int) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) Update(app *models.Application) error {
	return r.db.Save(app).Error
}

// UpdateStatus moves an application to a new status and records the reviewer.
func (r *applicationRepository) UpdateStatus(id uint, status string, reviewedBy *uint) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_at": &now,
	}
	if reviewedBy != nil {
		updates["reviewed_by"] = reviewedBy
	}
	return r.db.Model(&models.Application{}).Where("id = ?", id).Updates(updates).Error
}

func (r *applicationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Application{}).Count(&count).Error
	return count, err
}
