package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/internal/pkg/billing"
	"github.com/pourhaus/pourhaus/internal/pkg/database"
	"github.com/pourhaus/pourhaus/internal/pkg/env"
)

// HandleBillingWebhook is the billing provider's sole entry point into this
// system. It verifies the delivery signature when a webhook secret is
// configured, dedups by provider event id, and dispatches the parsed event.
func HandleBillingWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	signatureValid := false
	switch {
	case secret == "":
		log.Print("billing webhook: no webhook secret configured, accepting unverified delivery")
	case signature == "":
		log.Print("billing webhook: delivery without signature header, accepting unverified")
	default:
		signatureValid = billing.VerifyStripeWebhookSignature(rawBody, signature, secret)
		if !signatureValid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		}
	}

	event, err := billing.ParseEvent(rawBody)
	if err != nil {
		log.Printf("billing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx,
		models.BillingProviderStripe, eventID(event), eventType(event), string(rawBody), signatureValid)
	if err != nil {
		log.Printf("billing webhook: failed to persist event: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	processErr := svc.ProcessEvent(ctx, event)
	if err := svc.MarkWebhookProcessed(ctx, stored.ID, processErr); err != nil {
		log.Printf("billing webhook: failed to mark event %d processed: %v", stored.ID, err)
	}
	if processErr != nil {
		log.Printf("billing webhook: processing failed: %v", processErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

func eventID(ev billing.Event) string {
	switch e := ev.(type) {
	case billing.CheckoutCompleted:
		return e.EventID
	case billing.SubscriptionDeleted:
		return e.EventID
	case billing.InvoicePaymentSucceeded:
		return e.EventID
	case billing.InvoicePaymentFailed:
		return e.EventID
	case billing.UnknownEvent:
		return e.EventID
	default:
		return ""
	}
}

func eventType(ev billing.Event) string {
	switch e := ev.(type) {
	case billing.CheckoutCompleted:
		return billing.EventTypeCheckoutCompleted
	case billing.SubscriptionDeleted:
		return billing.EventTypeSubscriptionDeleted
	case billing.InvoicePaymentSucceeded:
		return billing.EventTypeInvoicePaymentSucceeded
	case billing.InvoicePaymentFailed:
		return billing.EventTypeInvoicePaymentFailed
	case billing.UnknownEvent:
		return e.Type
	default:
		return ""
	}
}
