package availability

import (
	"encoding/json"
	"log"
	"time"

	"github.com/pourhaus/pourhaus/app/repository"
	"github.com/pourhaus/pourhaus/internal/pkg/cache"
)

// Status buckets ordered from worst to best.
const (
	StatusSoldOut   = "sold_out"
	StatusCritical  = "critical"
	StatusLow       = "low"
	StatusLimited   = "limited"
	StatusAvailable = "available"
)

const cacheKey = "availability:tiers"
const cacheTTL = 30 * time.Second

// TierAvailability is the public view of a tier's remaining capacity.
// Raw capacity and current membership counts are deliberately absent: only
// the derived remaining count and urgency bucket are exposed.
type TierAvailability struct {
	TierName   string `json:"tier_name"`
	PriceCents int64  `json:"price_cents"`
	Status     string `json:"status"`
	Available  *int   `json:"available,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Calculator derives per-tier availability from the tier catalog and live
// membership counts.
type Calculator struct {
	tiers     repository.TierRepository
	customers repository.CustomerRepository
}

// NewCalculator creates a calculator over the given repositories.
func NewCalculator(tiers repository.TierRepository, customers repository.CustomerRepository) *Calculator {
	return &Calculator{tiers: tiers, customers: customers}
}

// Compute returns availability for every active tier.
func (c *Calculator) Compute() ([]TierAvailability, error) {
	tiers, err := c.tiers.GetActive()
	if err != nil {
		return nil, err
	}

	result := make([]TierAvailability, 0, len(tiers))
	for _, tier := range tiers {
		entry := TierAvailability{
			TierName:   tier.Name,
			PriceCents: tier.PriceCents,
			Status:     StatusAvailable,
		}

		// Uncapped tiers are always available and expose no count.
		if tier.Capacity != nil {
			active, err := c.customers.CountActiveByTier(tier.Name)
			if err != nil {
				return nil, err
			}
			remaining := *tier.Capacity - int(active)
			if remaining < 0 {
				remaining = 0
			}
			entry.Available = &remaining
			entry.Status, entry.Message = bucketFor(remaining)
		}

		result = append(result, entry)
	}
	return result, nil
}

// ComputeCached serves from the short-lived cache when possible, falling
// back to a live computation and refreshing the cache best-effort.
func (c *Calculator) ComputeCached() ([]TierAvailability, error) {
	if raw, err := cache.Get(cacheKey); err == nil && raw != "" {
		var cached []TierAvailability
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	result, err := c.Compute()
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := cache.Set(cacheKey, string(encoded), cacheTTL); err != nil {
			log.Printf("availability: cache refresh failed: %v", err)
		}
	}
	return result, nil
}

// Invalidate drops the cached response, used after admin tier changes.
func Invalidate() {
	if err := cache.Delete(cacheKey); err != nil {
		log.Printf("availability: cache invalidation failed: %v", err)
	}
}

// bucketFor maps a remaining count to its urgency bucket and canned message.
func bucketFor(remaining int) (string, string) {
	switch {
	case remaining == 0:
		return StatusSoldOut, "This tier is sold out. Join the waitlist to be notified."
	case remaining <= 5:
		return StatusCritical, "Almost gone! Only a handful of memberships left."
	case remaining <= 10:
		return StatusLow, "Running low. Fewer than a dozen spots remain."
	case remaining <= 20:
		return StatusLimited, "Limited availability at this tier."
	default:
		return StatusAvailable, ""
	}
}
