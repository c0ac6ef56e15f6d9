package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/app/repository"
	"github.com/pourhaus/pourhaus/internal/pkg/env"
	"github.com/pourhaus/pourhaus/internal/pkg/qrtoken"
	"github.com/pourhaus/pourhaus/internal/pkg/usercontext"
)

// HandleQRToken mints a short-lived redemption token for the calling member.
// Primary ownership takes precedence over a family-member link.
func HandleQRToken(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	customer, err := resolveCustomerForUser(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "No membership found for this account"})
		}
		log.Printf("qr token: customer lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load membership"})
	}

	secret := env.GetEnv("QR_TOKEN_SECRET", "")
	token, expiresAt, err := qrtoken.Issue(customer, userCtx.UserID, secret)
	if err != nil {
		log.Printf("qr token: issuing failed for customer %d: %v", customer.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to issue token"})
	}

	return c.JSON(fiber.Map{
		"token":        token,
		"expires_at":   expiresAt.UTC().Format(time.RFC3339),
		"customer_id":  customer.ID,
		"is_secondary": userCtx.UserID != customer.UserID,
	})
}

// resolveCustomerForUser finds the customer a user may redeem against,
// checking primary ownership before the family-member link.
func resolveCustomerForUser(userID uint) (*models.Customer, error) {
	repo := repository.GetGlobalFactory().GetCustomerRepository()
	customer, err := repo.GetByUserID(userID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return repo.GetBySecondaryUserID(userID)
}
