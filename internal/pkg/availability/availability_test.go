package availability

import (
	"testing"

	"gorm.io/gorm"

	"github.com/pourhaus/pourhaus/app/models"
)

type stubTierRepo struct {
	active []models.Tier
}

func (s *stubTierRepo) Create(tier *models.Tier) error            { return nil }
func (s *stubTierRepo) GetByID(id uint) (*models.Tier, error)     { return nil, gorm.ErrRecordNotFound }
func (s *stubTierRepo) GetByName(name string) (*models.Tier, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubTierRepo) GetActive() ([]models.Tier, error) { return s.active, nil }
func (s *stubTierRepo) GetAll() ([]models.Tier, error)    { return s.active, nil }
func (s *stubTierRepo) Update(tier *models.Tier) error    { return nil }

type stubCustomerRepo struct {
	activeByTier map[string]int64
}

func (s *stubCustomerRepo) Create(customer *models.Customer) error { return nil }
func (s *stubCustomerRepo) GetByID(id uint) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubCustomerRepo) GetByUserID(userID uint) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubCustomerRepo) GetBySecondaryUserID(userID uint) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubCustomerRepo) Update(customer *models.Customer) error            { return nil }
func (s *stubCustomerRepo) UpdateStatus(id uint, status string) error         { return nil }
func (s *stubCustomerRepo) IncrementPours(id uint, amount int) error          { return nil }
func (s *stubCustomerRepo) RedeemPours(id uint, quantity int) (bool, error)   { return false, nil }
func (s *stubCustomerRepo) LinkSecondaryUser(cID, uID uint) (bool, error)     { return false, nil }
func (s *stubCustomerRepo) UnlinkSecondaryUser(customerID uint) error         { return nil }
func (s *stubCustomerRepo) List(offset, limit int) ([]models.Customer, error) { return nil, nil }
func (s *stubCustomerRepo) CountActiveByTier(tierName string) (int64, error) {
	return s.activeByTier[tierName], nil
}
func (s *stubCustomerRepo) Count() (int64, error) { return 0, nil }

func intPtr(n int) *int { return &n }

func TestCompute_Buckets(t *testing.T) {
	tiers := &stubTierRepo{active: []models.Tier{
		{Name: "Sold Out", PriceCents: 5000, Capacity: intPtr(50)},
		{Name: "Critical", PriceCents: 5000, Capacity: intPtr(50)},
		{Name: "Low", PriceCents: 5000, Capacity: intPtr(50)},
		{Name: "Limited", PriceCents: 5000, Capacity: intPtr(50)},
		{Name: "Open", PriceCents: 5000, Capacity: intPtr(50)},
	}}
	customers := &stubCustomerRepo{activeByTier: map[string]int64{
		"Sold Out": 50,
		"Critical": 45,
		"Low":      42,
		"Limited":  35,
		"Open":     10,
	}}

	result, err := NewCalculator(tiers, customers).Compute()
	if err != nil {
		t.Fatalf("unexpected compute error: %v", err)
	}
	if len(result) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(result))
	}

	want := map[string]struct {
		status    string
		available int
	}{
		"Sold Out": {StatusSoldOut, 0},
		"Critical": {StatusCritical, 5},
		"Low":      {StatusLow, 8},
		"Limited":  {StatusLimited, 15},
		"Open":     {StatusAvailable, 40},
	}
	for _, entry := range result {
		w := want[entry.TierName]
		if entry.Status != w.status {
			t.Fatalf("%s: status = %q, want %q", entry.TierName, entry.Status, w.status)
		}
		if entry.Available == nil || *entry.Available != w.available {
			t.Fatalf("%s: available = %v, want %d", entry.TierName, entry.Available, w.available)
		}
		if entry.Status != StatusAvailable && entry.Message == "" {
			t.Fatalf("%s: expected an urgency message for %q", entry.TierName, entry.Status)
		}
	}
}

func TestCompute_UncappedTier(t *testing.T) {
	tiers := &stubTierRepo{active: []models.Tier{{Name: "House", PriceCents: 2500}}}
	customers := &stubCustomerRepo{activeByTier: map[string]int64{"House": 9999}}

	result, err := NewCalculator(tiers, customers).Compute()
	if err != nil {
		t.Fatalf("unexpected compute error: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result))
	}
	entry := result[0]
	if entry.Status != StatusAvailable {
		t.Fatalf("uncapped tier status = %q, want %q", entry.Status, StatusAvailable)
	}
	if entry.Available != nil {
		t.Fatalf("uncapped tier must not expose a count, got %d", *entry.Available)
	}
}

func TestCompute_OverCapacityClampsToZero(t *testing.T) {
	tiers := &stubTierRepo{active: []models.Tier{{Name: "Over", Capacity: intPtr(10)}}}
	customers := &stubCustomerRepo{activeByTier: map[string]int64{"Over": 14}}

	result, err := NewCalculator(tiers, customers).Compute()
	if err != nil {
		t.Fatalf("unexpected compute error: %v", err)
	}
	if got := *result[0].Available; got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
	if result[0].Status != StatusSoldOut {
		t.Fatalf("status = %q, want %q", result[0].Status, StatusSoldOut)
	}
}

func TestBucketFor_Boundaries(t *testing.T) {
	tests := []struct {
		remaining int
		want      string
	}{
		{0, StatusSoldOut},
		{1, StatusCritical},
		{5, StatusCritical},
		{6, StatusLow},
		{10, StatusLow},
		{11, StatusLimited},
		{20, StatusLimited},
		{21, StatusAvailable},
	}
	for _, tt := range tests {
		if got, _ := bucketFor(tt.remaining); got != tt.want {
			t.Fatalf("bucketFor(%d) = %q, want %q", tt.remaining, got, tt.want)
		}
	}
}
