package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/pourhaus/pourhaus/app/repository"
	"github.com/pourhaus/pourhaus/internal/pkg/availability"
)

// HandleAvailability exposes per-tier remaining capacity to the public
// signup page. Only derived counts and urgency buckets leave the system;
// raw capacity and membership counts stay internal.
func HandleAvailability(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	calc := availability.NewCalculator(repos.Tier, repos.Customer)

	tiers, err := calc.ComputeCached()
	if err != nil {
		log.Printf("availability: computation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to compute availability"})
	}

	return c.JSON(fiber.Map{"tiers": tiers})
}
