package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/app/repository"
	"github.com/pourhaus/pourhaus/internal/pkg/env"
	"github.com/pourhaus/pourhaus/internal/pkg/qrtoken"
	"github.com/pourhaus/pourhaus/internal/pkg/usercontext"
)

// HandlePoursSummary reports the calling member's pour allowance state for
// the current billing period. Only the primary owner can query this;
// family members see their shared balance through the QR flow instead.
func HandlePoursSummary(c *fiber.Ctx) error {
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
		log.Printf("pours summary: customer lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load membership"})
	}

	tier, err := repos.Tier.GetByName(customer.TierName)
	if err != nil {
		log.Printf("pours summary: tier lookup failed for customer %d: %v", customer.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load tier"})
	}

	var periodStart, periodEnd interface{}
	poursUsed := 0
	membership, err := repos.Membership.GetActiveByCustomerID(customer.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("pours summary: membership lookup failed for customer %d: %v", customer.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load membership"})
	}
	if err == nil {
		periodStart = formatTimePtr(membership.CurrentPeriodStart)
		periodEnd = formatTimePtr(membership.CurrentPeriodEnd)
		if membership.CurrentPeriodStart != nil && membership.CurrentPeriodEnd != nil {
			used, err := repos.Pour.SumRedeemedInPeriod(customer.ID, *membership.CurrentPeriodStart, *membership.CurrentPeriodEnd)
			if err != nil {
				log.Printf("pours summary: ledger sum failed for customer %d: %v", customer.ID, err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load pour history"})
			}
			poursUsed = used
		}
	}

	return c.JSON(fiber.Map{
		"available_pours": customer.PoursBalance,
		"tier_max":        tier.MonthlyPours,
		"pours_used":      poursUsed,
		"period_start":    periodStart,
		"period_end":      periodEnd,
	})
}

type redeemRequest struct {
	Token    string `json:"token"`
	Quantity int    `json:"quantity"`
}

// HandlePourRedeem is the point-of-service side of the QR flow: staff scan
// a member token and pour against the balance. The decrement is a guarded
// atomic update, so an empty balance can never be overdrawn.
func HandlePourRedeem(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	secret := env.GetEnv("QR_TOKEN_SECRET", "")
	claims, err := qrtoken.Verify(req.Token, secret)
	if err != nil {
		if errors.Is(err, qrtoken.ErrExpiredToken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token_expired", "message": "QR code has expired, ask the member to refresh it"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_token", "message": "QR code could not be verified"})
	}

	repos := repository.GetGlobalRepositories()
	customer, err := repos.Customer.GetByID(claims.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Customer not found"})
		}
		log.Printf("pour redeem: customer %d lookup failed: %v", claims.CustomerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load customer"})
	}
	if !customer.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Membership is not active"})
	}

	ok, err := repos.Customer.RedeemPours(customer.ID, req.Quantity)
	if err != nil {
		log.Printf("pour redeem: decrement failed for customer %d: %v", customer.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to redeem"})
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "insufficient_balance", "message": "Not enough pours left this period"})
	}

	staffID := userCtx.UserID
	record := &models.PourRecord{
		CustomerID: customer.ID,
		Quantity:   req.Quantity,
		Status:     models.PourStatusRedeemed,
		PouredBy:   &staffID,
	}
	if err := repos.Pour.Create(record); err != nil {
		// The balance is already decremented; the ledger row is best-effort.
		log.Printf("pour redeem: ledger append failed for customer %d: %v", customer.ID, err)
	}

	return c.JSON(fiber.Map{
		"customer_id": customer.ID,
		"quantity":    req.Quantity,
		"remaining":   customer.PoursBalance - req.Quantity,
	})
}
