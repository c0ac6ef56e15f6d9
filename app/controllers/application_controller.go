package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/app/repository"
	"github.com/pourhaus/pourhaus/internal/pkg/billing"
	"github.com/pourhaus/pourhaus/internal/pkg/env"
	"github.com/pourhaus/pourhaus/internal/pkg/usercontext"
)

type applicationRequest struct {
	TierName string `json:"tier_name"`
	Notes    string `json:"notes"`
}

// HandleApplicationSubmit creates a pending membership application for the
// calling user. One open application per user at a time.
func HandleApplicationSubmit(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req applicationRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.TierName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "A tier name is required"})
	}

	repos := repository.GetGlobalRepositories()
	tier, err := repos.Tier.GetByName(req.TierName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_tier", "message": "That tier does not exist"})
		}
		log.Printf("application submit: tier lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to look up tier"})
	}
	if !tier.IsActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tier_inactive", "message": "That tier is not accepting applications"})
	}

	if _, err := repos.Customer.GetByUserID(userCtx.UserID); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "already_member", "message": "You already have a membership"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("application submit: customer lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check membership"})
	}

	if _, err := repos.Application.GetPendingByUserID(userCtx.UserID); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "already_pending", "message": "You already have a pending application"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("application submit: pending lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to check applications"})
	}

	app := &models.Application{
		UserID:   userCtx.UserID,
		TierName: tier.Name,
		Status:   models.ApplicationStatusPending,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if err := repos.Application.Create(app); err != nil {
		log.Printf("application submit: create failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to submit application"})
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

type checkoutRequest struct {
	ApplicationID uint `json:"application_id"`
}

// HandleCheckout starts the provider checkout for the caller's application.
// The application id, user id and tier ride along as session metadata so the
// completion webhook can activate the membership.
func HandleCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil || req.ApplicationID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "An application id is required"})
	}

	repos := repository.GetGlobalRepositories()
	app, err := repos.Application.GetByID(req.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Application not found"})
		}
		log.Printf("checkout: application lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load application"})
	}
	if app.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Application not found"})
	}
	if app.Status != models.ApplicationStatusPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_status", "message": "This application is no longer open for payment"})
	}

	tier, err := repos.Tier.GetByName(app.TierName)
	if err != nil {
		log.Printf("checkout: tier lookup failed for application %d: %v", app.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load tier"})
	}

	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	client := billing.NewCheckoutClientFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	session, err := client.CreateCheckoutSession(ctx, billing.CheckoutParams{
		ApplicationID: app.ID,
		UserID:        userCtx.UserID,
		TierName:      tier.Name,
		PriceRef:      tier.ProviderPrice,
		SuccessURL:    base + "/membership/welcome",
		CancelURL:     base + "/membership/apply",
	})
	if err != nil {
		log.Printf("checkout: session creation failed for application %d: %v", app.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to start checkout"})
	}

	return c.JSON(fiber.Map{
		"session_id":   session.ID,
		"checkout_url": session.URL,
	})
}
