package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pourhaus/pourhaus/app/repository"
	"github.com/pourhaus/pourhaus/internal/pkg/usercontext"
)

type familyAddRequest struct {
	Email string `json:"email"`
}

// HandleFamilyAdd links another account as the calling customer's family
// member. The link itself is a conditional single-row update, so two
// concurrent invitations cannot both take the slot.
func HandleFamilyAdd(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req familyAddRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "An email address is required"})
	}

	repos := repository.GetGlobalRepositories()
	customer, err := repos.Customer.GetByUserID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "No membership found for this account"})
		}
		log.Printf("family add: customer lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load membership"})
	}

	target, err := repos.User.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no_account", "message": "No account exists for that email"})
		}
		log.Printf("family add: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to look up account"})
	}

	if target.ID == userCtx.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "You cannot add yourself as a family member"})
	}

	// Someone with their own membership cannot also be a family member.
	if _, err := repos.Customer.GetByUserID(target.ID); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "already_member", "message": "That person already has their own membership"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("family add: target customer lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to look up account"})
	}

	// Nor can they be linked to two customers at once.
	if _, err := repos.Customer.GetBySecondaryUserID(target.ID); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "already_linked", "message": "That person is already a family member on another membership"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("family add: secondary lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to look up account"})
	}

	linked, err := repos.Customer.LinkSecondaryUser(customer.ID, target.ID)
	if err != nil {
		log.Printf("family add: link failed for customer %d: %v", customer.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to add family member"})
	}
	if !linked {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "slot_taken", "message": "Your membership already has a family member"})
	}

	return c.JSON(fiber.Map{
		"customer_id":       customer.ID,
		"secondary_user_id": target.ID,
	})
}

// HandleFamilyRemove clears the family-member link unconditionally.
func HandleFamilyRemove(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repos := repository.GetGlobalRepositories()
	customer, err := repos.Customer.GetByUserID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "No membership found for this account"})
		}
		log.Printf("family remove: customer lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load membership"})
	}

	if err := repos.Customer.UnlinkSecondaryUser(customer.ID); err != nil {
		log.Printf("family remove: unlink failed for customer %d: %v", customer.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to remove family member"})
	}

	return c.JSON(fiber.Map{"customer_id": customer.ID, "removed": true})
}
