package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/pourhaus/pourhaus/app/controllers"
	"github.com/pourhaus/pourhaus/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))

	// Billing provider webhooks are authenticated by signature, not bearer token.
	api.Post("/webhooks/billing", controllers.HandleBillingWebhook)

	v1 := api.Group("/v1")
	h.registerPublicRoutes(v1)
	h.registerMemberRoutes(v1)
	h.registerStaffRoutes(v1)
}

func (h ApiRouter) registerPublicRoutes(v1 fiber.Router) {
	v1.Get("/availability", controllers.HandleAvailability)
	v1.Post("/auth/register", controllers.HandleRegister)
	v1.Post("/auth/login", controllers.HandleLogin)
}

func (h ApiRouter) registerMemberRoutes(v1 fiber.Router) {
	member := v1.Group("", middleware.BearerAuthMiddleware())

	member.Get("/qr-token", controllers.HandleQRToken)
	member.Post("/qr-token", controllers.HandleQRToken)
	member.Get("/pours/summary", controllers.HandlePoursSummary)
	member.Post("/family", controllers.HandleFamilyAdd)
	member.Delete("/family", controllers.HandleFamilyRemove)
	member.Post("/applications", controllers.HandleApplicationSubmit)
	member.Post("/checkout", controllers.HandleCheckout)
}

func (h ApiRouter) registerStaffRoutes(v1 fiber.Router) {
	staff := v1.Group("", middleware.BearerAuthMiddleware(), middleware.RequireStaffMiddleware())

	// Point-of-service redemption, available to any staff account.
	staff.Post("/pours/redeem", controllers.HandlePourRedeem)

	admin := staff.Group("/admin")
	admin.Get("/stats", controllers.HandleAdminStats)
	admin.Get("/applications", controllers.HandleAdminApplicationsList)
	admin.Post("/applications/:id/approve", controllers.HandleAdminApplicationApprove)
	admin.Post("/applications/:id/reject", controllers.HandleAdminApplicationReject)
	admin.Get("/customers", controllers.HandleAdminCustomersList)
	admin.Post("/customers/:id/deactivate", controllers.HandleAdminCustomerDeactivate)

	// Tier management changes pricing and capacity, so it is admin-only.
	admin.Get("/tiers", controllers.HandleAdminTiersList)
	admin.Post("/tiers", middleware.RequireAdminMiddleware(), controllers.HandleAdminTierCreate)
	admin.Put("/tiers/:id", middleware.RequireAdminMiddleware(), controllers.HandleAdminTierUpdate)
}
