package billing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Provider event type strings as they appear on the wire.
const (
	EventTypeCheckoutCompleted       = "checkout.session.completed"
	EventTypeSubscriptionDeleted     = "customer.subscription.deleted"
	EventTypeInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventTypeInvoicePaymentFailed    = "invoice.payment_failed"
)

// Event is the closed set of webhook event variants the service dispatches
// on. Every variant carries its typed payload; anything the parser does not
// recognize becomes UnknownEvent so the switch over variants stays
// exhaustive.
type Event interface {
	isEvent()
}

// CheckoutCompleted is emitted once when a prospective member finishes the
// provider checkout for an approved application.
type CheckoutCompleted struct {
	EventID        string
	SubscriptionID string
	ApplicationID  string
	UserID         string
	TierName       string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
}

// SubscriptionDeleted is emitted when the provider cancels a subscription.
type SubscriptionDeleted struct {
	EventID        string
	SubscriptionID string
}

// InvoicePaymentSucceeded is emitted on every successful recurring payment.
type InvoicePaymentSucceeded struct {
	EventID        string
	SubscriptionID string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
}

// InvoicePaymentFailed is emitted when a recurring payment fails.
type InvoicePaymentFailed struct {
	EventID        string
	SubscriptionID string
}

// UnknownEvent covers event types this system does not handle. They are
// logged and acknowledged, never errored.
type UnknownEvent struct {
	EventID string
	Type    string
}

func (CheckoutCompleted) isEvent()       {}
func (SubscriptionDeleted) isEvent()     {}
func (InvoicePaymentSucceeded) isEvent() {}
func (InvoicePaymentFailed) isEvent()    {}
func (UnknownEvent) isEvent()            {}

// envelope mirrors the provider's outer event shape.
type envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type checkoutSessionObject struct {
	ID           string            `json:"id"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type subscriptionObject struct {
	ID                 string `json:"id"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
}

type invoiceObject struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
	PeriodStart  int64  `json:"period_start"`
	PeriodEnd    int64  `json:"period_end"`
}

// ParseEvent decodes a raw webhook payload into one of the event variants.
// Structural problems (bad JSON, missing object) are errors; unhandled event
// types are not.
func ParseEvent(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}

	switch strings.TrimSpace(env.Type) {
	case EventTypeCheckoutCompleted:
		var obj checkoutSessionObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("invalid checkout session object: %w", err)
		}
		return CheckoutCompleted{
			EventID:        env.ID,
			SubscriptionID: strings.TrimSpace(obj.Subscription),
			ApplicationID:  strings.TrimSpace(obj.Metadata["applicationId"]),
			UserID:         strings.TrimSpace(obj.Metadata["userId"]),
			TierName:       strings.TrimSpace(obj.Metadata["tierName"]),
		}, nil
	case EventTypeSubscriptionDeleted:
		var obj subscriptionObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("invalid subscription object: %w", err)
		}
		return SubscriptionDeleted{
			EventID:        env.ID,
			SubscriptionID: strings.TrimSpace(obj.ID),
		}, nil
	case EventTypeInvoicePaymentSucceeded:
		var obj invoiceObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("invalid invoice object: %w", err)
		}
		return InvoicePaymentSucceeded{
			EventID:        env.ID,
			SubscriptionID: strings.TrimSpace(obj.Subscription),
			PeriodStart:    unixTimePtr(obj.PeriodStart),
			PeriodEnd:      unixTimePtr(obj.PeriodEnd),
		}, nil
	case EventTypeInvoicePaymentFailed:
		var obj invoiceObject
		if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
			return nil, fmt.Errorf("invalid invoice object: %w", err)
		}
		return InvoicePaymentFailed{
			EventID:        env.ID,
			SubscriptionID: strings.TrimSpace(obj.Subscription),
		}, nil
	default:
		return UnknownEvent{EventID: env.ID, Type: env.Type}, nil
	}
}

func unixTimePtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func parseUintField(name, value string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid %s in event metadata: %q", name, value)
	}
	return uint(n), nil
}
