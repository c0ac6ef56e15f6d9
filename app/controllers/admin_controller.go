package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/app/repository"
	"github.com/pourhaus/pourhaus/internal/pkg/availability"
	"github.com/pourhaus/pourhaus/internal/pkg/statistics"
	"github.com/pourhaus/pourhaus/internal/pkg/usercontext"
)

// HandleAdminApplicationsList returns membership applications for review,
// optionally filtered by status.
func HandleAdminApplicationsList(c *fiber.Ctx) error {
	offset, limit := paginationParams(c)
	status := c.Query("status")

	repo := repository.GetGlobalFactory().GetApplicationRepository()

	var (
		apps []models.Application
		err  error
	)
	if status != "" {
		apps, err = repo.ListByStatus(status, offset, limit)
	} else {
		apps, err = repo.List(offset, limit)
	}
	if err != nil {
		log.Printf("admin: application list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not load applications"})
	}

	return c.JSON(fiber.Map{"applications": apps, "offset": offset, "limit": limit})
}

// HandleAdminApplicationApprove marks a pending application as approved so
// the applicant can proceed to checkout.
func HandleAdminApplicationApprove(c *fiber.Ctx) error {
	return reviewApplication(c, models.ApplicationStatusApproved)
}

// HandleAdminApplicationReject rejects a pending application.
func HandleAdminApplicationReject(c *fiber.Ctx) error {
	return reviewApplication(c, models.ApplicationStatusRejected)
}

func reviewApplication(c *fiber.Ctx, status string) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid application id"})
	}

	repo := repository.GetGlobalFactory().GetApplicationRepository()
	app, err := repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Application not found"})
		}
		log.Printf("admin: application lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Review failed"})
	}

	if app.Status != models.ApplicationStatusPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "not_pending", "message": "Application has already been reviewed"})
	}

	reviewer := usercontext.GetUserID(c)
	if err := repo.UpdateStatus(app.ID, status, &reviewer); err != nil {
		log.Printf("admin: application %d review failed: %v", app.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Review failed"})
	}

	return c.JSON(fiber.Map{"id": app.ID, "status": status})
}

// HandleAdminCustomersList returns customer records for the staff dashboard.
func HandleAdminCustomersList(c *fiber.Ctx) error {
	offset, limit := paginationParams(c)

	repo := repository.GetGlobalFactory().GetCustomerRepository()
	customers, err := repo.List(offset, limit)
	if err != nil {
		log.Printf("admin: customer list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not load customers"})
	}

	return c.JSON(fiber.Map{"customers": customers, "offset": offset, "limit": limit})
}

// HandleAdminCustomerDeactivate blocks a customer from redeeming pours.
// The billing subscription is untouched; cancellation arrives via webhook.
func HandleAdminCustomerDeactivate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid customer id"})
	}

	repo := repository.GetGlobalFactory().GetCustomerRepository()
	if _, err := repo.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Customer not found"})
		}
		log.Printf("admin: customer lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Deactivation failed"})
	}

	if err := repo.UpdateStatus(uint(id), models.CustomerStatusInactive); err != nil {
		log.Printf("admin: customer %d deactivation failed: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Deactivation failed"})
	}

	availability.Invalidate()

	return c.JSON(fiber.Map{"id": uint(id), "status": models.CustomerStatusInactive})
}

type tierRequest struct {
	Name          string `json:"name"`
	PriceCents    int64  `json:"price_cents"`
	MonthlyPours  int    `json:"monthly_pours"`
	Capacity      *int   `json:"capacity"`
	Description   string `json:"description"`
	IsActive      *bool  `json:"is_active"`
	ProviderPrice string `json:"provider_price_ref"`
	DisplayOrder  int    `json:"display_order"`
}

// HandleAdminTiersList returns every tier including inactive ones.
func HandleAdminTiersList(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetTierRepository()
	tiers, err := repo.GetAll()
	if err != nil {
		log.Printf("admin: tier list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not load tiers"})
	}
	return c.JSON(fiber.Map{"tiers": tiers})
}

// HandleAdminTierCreate creates a new tier and invalidates the cached
// availability snapshot.
func HandleAdminTierCreate(c *fiber.Ctx) error {
	var req tierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	tier := &models.Tier{
		Name:          req.Name,
		PriceCents:    req.PriceCents,
		MonthlyPours:  req.MonthlyPours,
		Capacity:      req.Capacity,
		Description:   req.Description,
		IsActive:      true,
		ProviderPrice: req.ProviderPrice,
		DisplayOrder:  req.DisplayOrder,
	}
	if req.IsActive != nil {
		tier.IsActive = *req.IsActive
	}
	if err := tier.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": "Tier name and non-negative price and pours are required"})
	}

	repo := repository.GetGlobalFactory().GetTierRepository()
	if _, err := repo.GetByName(tier.Name); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name_taken", "message": "A tier with that name already exists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("admin: tier name lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Tier creation failed"})
	}

	if err := repo.Create(tier); err != nil {
		log.Printf("admin: tier create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Tier creation failed"})
	}

	availability.Invalidate()

	return c.Status(fiber.StatusCreated).JSON(tier)
}

// HandleAdminTierUpdate updates an existing tier and invalidates the cached
// availability snapshot.
func HandleAdminTierUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid tier id"})
	}

	var req tierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	repo := repository.GetGlobalFactory().GetTierRepository()
	tier, err := repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Tier not found"})
		}
		log.Printf("admin: tier lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Tier update failed"})
	}

	if req.Name != "" {
		tier.Name = req.Name
	}
	if req.PriceCents > 0 {
		tier.PriceCents = req.PriceCents
	}
	if req.MonthlyPours > 0 {
		tier.MonthlyPours = req.MonthlyPours
	}
	if req.Capacity != nil {
		tier.Capacity = req.Capacity
	}
	if req.Description != "" {
		tier.Description = req.Description
	}
	if req.ProviderPrice != "" {
		tier.ProviderPrice = req.ProviderPrice
	}
	if req.DisplayOrder != 0 {
		tier.DisplayOrder = req.DisplayOrder
	}
	if req.IsActive != nil {
		tier.IsActive = *req.IsActive
	}

	if err := tier.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": "Tier name and non-negative price and pours are required"})
	}
	if err := repo.Update(tier); err != nil {
		log.Printf("admin: tier %d update failed: %v", tier.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Tier update failed"})
	}

	availability.Invalidate()

	return c.JSON(tier)
}

// HandleAdminStats returns the cached dashboard counters.
func HandleAdminStats(c *fiber.Ctx) error {
	stats, err := statistics.GetDashboardStats()
	if err != nil {
		log.Printf("admin: stats failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not load statistics"})
	}
	return c.JSON(stats)
}
