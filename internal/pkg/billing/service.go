package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/app/repository"
	"gorm.io/gorm"
)

// Service applies provider webhook events to local membership state.
type Service struct {
	repos *repository.Repositories
}

// NewService creates a billing service from injected repositories.
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(repository.NewRepositories(db))
}

// RecordWebhookEvent persists webhook payloads idempotently. Events without
// a provider event id are keyed by a payload hash so redeliveries of the
// same body still dedup.
func (s *Service) RecordWebhookEvent(ctx context.Context, provider, eventID, eventType, payloadJSON string, signatureValid bool) (bool, *models.WebhookEvent, error) {
	_ = ctx
	p := strings.ToLower(strings.TrimSpace(provider))
	if p == "" {
		return false, nil, errors.New("provider is required")
	}
	id := strings.TrimSpace(eventID)
	if id == "" {
		sum := sha256.Sum256([]byte(payloadJSON))
		id = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        p,
		ProviderEventID: id,
		EventType:       strings.TrimSpace(eventType),
		PayloadJSON:     payloadJSON,
		SignatureValid:  signatureValid,
	}
	return s.repos.WebhookEvent.CreateIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repos.WebhookEvent.MarkProcessed(webhookEventID, errMsg)
}

// ProcessEvent dispatches one parsed event to its handler. The switch covers
// every variant of the closed Event set.
func (s *Service) ProcessEvent(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case CheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, e)
	case SubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, e)
	case InvoicePaymentSucceeded:
		return s.handleInvoicePaymentSucceeded(ctx, e)
	case InvoicePaymentFailed:
		log.Printf("billing: invoice payment failed for subscription %s, no state change", e.SubscriptionID)
		return nil
	case UnknownEvent:
		log.Printf("billing: ignoring unhandled event type %q (id %s)", e.Type, e.EventID)
		return nil
	default:
		return fmt.Errorf("billing: unexpected event variant %T", ev)
	}
}

// handleCheckoutCompleted approves the application and creates the
// customer/membership pair seeded with the tier's monthly allowance.
// A failure in any of the three writes aborts the sequence; there is no
// compensating rollback, the provider's retry redelivers the event.
func (s *Service) handleCheckoutCompleted(ctx context.Context, e CheckoutCompleted) error {
	_ = ctx
	if e.ApplicationID == "" {
		return errors.New("missing applicationId in event metadata")
	}
	if e.UserID == "" {
		return errors.New("missing userId in event metadata")
	}
	if e.TierName == "" {
		return errors.New("missing tierName in event metadata")
	}

	applicationID, err := parseUintField("applicationId", e.ApplicationID)
	if err != nil {
		return err
	}
	userID, err := parseUintField("userId", e.UserID)
	if err != nil {
		return err
	}

	tier, err := s.repos.Tier.GetByName(e.TierName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("unknown tier %q in event metadata", e.TierName)
		}
		return fmt.Errorf("tier lookup failed: %w", err)
	}

	if err := s.repos.Application.UpdateStatus(applicationID, models.ApplicationStatusApproved, nil); err != nil {
		return fmt.Errorf("failed to approve application %d: %w", applicationID, err)
	}

	customer := &models.Customer{
		UserID:       userID,
		MemberNumber: uuid.NewString(),
		TierName:     tier.Name,
		PoursBalance: tier.MonthlyPours,
		Status:       models.CustomerStatusActive,
	}
	if err := s.repos.Customer.Create(customer); err != nil {
		return fmt.Errorf("failed to create customer for user %d: %w", userID, err)
	}

	membership := &models.Membership{
		CustomerID:             customer.ID,
		TierName:               tier.Name,
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: e.SubscriptionID,
		CurrentPeriodStart:     e.PeriodStart,
		CurrentPeriodEnd:       e.PeriodEnd,
		Status:                 models.MembershipStatusActive,
	}
	if err := s.repos.Membership.Create(membership); err != nil {
		return fmt.Errorf("failed to create membership for customer %d: %w", customer.ID, err)
	}

	log.Printf("billing: activated customer %d (tier %s, %d pours) from application %d",
		customer.ID, tier.Name, tier.MonthlyPours, applicationID)
	return nil
}

// handleSubscriptionDeleted cancels the membership and deactivates its
// customer. Unknown subscription ids are acknowledged as no-ops, and
// failures here are logged rather than retried.
func (s *Service) handleSubscriptionDeleted(ctx context.Context, e SubscriptionDeleted) error {
	_ = ctx
	membership, err := s.repos.Membership.GetByProviderSubscriptionID(models.BillingProviderStripe, e.SubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("billing: subscription %s deleted but no membership found, ignoring", e.SubscriptionID)
			return nil
		}
		log.Printf("billing: membership lookup for subscription %s failed: %v", e.SubscriptionID, err)
		return nil
	}

	if err := s.repos.Membership.UpdateStatus(membership.ID, models.MembershipStatusCancelled); err != nil {
		log.Printf("billing: failed to cancel membership %d: %v", membership.ID, err)
		return nil
	}
	if err := s.repos.Customer.UpdateStatus(membership.CustomerID, models.CustomerStatusInactive); err != nil {
		log.Printf("billing: membership %d cancelled but customer %d deactivation failed: %v",
			membership.ID, membership.CustomerID, err)
		return nil
	}

	log.Printf("billing: cancelled membership %d and deactivated customer %d", membership.ID, membership.CustomerID)
	return nil
}

// handleInvoicePaymentSucceeded replenishes the customer's pours balance by
// the tier's monthly allowance and refreshes the billing period bounds.
func (s *Service) handleInvoicePaymentSucceeded(ctx context.Context, e InvoicePaymentSucceeded) error {
	_ = ctx
	membership, err := s.repos.Membership.GetByProviderSubscriptionID(models.BillingProviderStripe, e.SubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("billing: invoice paid for unknown subscription %s, ignoring", e.SubscriptionID)
			return nil
		}
		return fmt.Errorf("membership lookup failed: %w", err)
	}

	tier, err := s.repos.Tier.GetByName(membership.TierName)
	if err != nil {
		return fmt.Errorf("tier lookup for membership %d failed: %w", membership.ID, err)
	}

	if err := s.repos.Customer.IncrementPours(membership.CustomerID, tier.MonthlyPours); err != nil {
		return fmt.Errorf("failed to replenish pours for customer %d: %w", membership.CustomerID, err)
	}

	if e.PeriodStart != nil || e.PeriodEnd != nil {
		if err := s.repos.Membership.UpdatePeriod(membership.ID, e.PeriodStart, e.PeriodEnd); err != nil {
			log.Printf("billing: failed to update billing period on membership %d: %v", membership.ID, err)
		}
	}

	log.Printf("billing: replenished %d pours for customer %d (subscription %s)",
		tier.MonthlyPours, membership.CustomerID, e.SubscriptionID)
	return nil
}
