package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/app/repository"
)

type fakeTierRepo struct {
	tiers map[string]*models.Tier
}

func (f *fakeTierRepo) Create(tier *models.Tier) error { f.tiers[tier.Name] = tier; return nil }
func (f *fakeTierRepo) GetByID(id uint) (*models.Tier, error) {
	for _, t := range f.tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTierRepo) GetByName(name string) (*models.Tier, error) {
	if t, ok := f.tiers[name]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTierRepo) GetActive() ([]models.Tier, error) { return nil, nil }
func (f *fakeTierRepo) GetAll() ([]models.Tier, error)    { return nil, nil }
func (f *fakeTierRepo) Update(tier *models.Tier) error    { f.tiers[tier.Name] = tier; return nil }

type fakeApplicationRepo struct {
	statuses map[uint]string
}

func (f *fakeApplicationRepo) Create(app *models.Application) error { return nil }
func (f *fakeApplicationRepo) GetByID(id uint) (*models.Application, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeApplicationRepo) GetPendingByUserID(userID uint) (*models.Application, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeApplicationRepo) ListByStatus(status string, offset, limit int) ([]models.Application, error) {
	return nil, nil
}
func (f *fakeApplicationRepo) List(offset, limit int) ([]models.Application, error) { return nil, nil }
func (f *fakeApplicationRepo) Update(app *models.Application) error                 { return nil }
func (f *fakeApplicationRepo) UpdateStatus(id uint, status string, reviewedBy *uint) error {
	f.statuses[id] = status
	return nil
}
func (f *fakeApplicationRepo) Count() (int64, error) { return 0, nil }

type fakeCustomerRepo struct {
	nextID    uint
	customers map[uint]*models.Customer
}

func (f *fakeCustomerRepo) Create(customer *models.Customer) error {
	f.nextID++
	customer.ID = f.nextID
	f.customers[customer.ID] = customer
	return nil
}
func (f *fakeCustomerRepo) GetByID(id uint) (*models.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCustomerRepo) GetByUserID(userID uint) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCustomerRepo) GetBySecondaryUserID(userID uint) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCustomerRepo) Update(customer *models.Customer) error { return nil }
func (f *fakeCustomerRepo) UpdateStatus(id uint, status string) error {
	c, ok := f.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = status
	return nil
}
func (f *fakeCustomerRepo) IncrementPours(id uint, amount int) error {
	c, ok := f.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.PoursBalance += amount
	return nil
}
func (f *fakeCustomerRepo) RedeemPours(id uint, quantity int) (bool, error) {
	c, ok := f.customers[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if c.PoursBalance < quantity {
		return false, nil
	}
	c.PoursBalance -= quantity
	c.LifetimePours += quantity
	return true, nil
}
func (f *fakeCustomerRepo) LinkSecondaryUser(customerID, userID uint) (bool, error) {
	return false, nil
}
func (f *fakeCustomerRepo) UnlinkSecondaryUser(customerID uint) error { return nil }
func (f *fakeCustomerRepo) List(offset, limit int) ([]models.Customer, error) {
	return nil, nil
}
func (f *fakeCustomerRepo) CountActiveByTier(tierName string) (int64, error) { return 0, nil }
func (f *fakeCustomerRepo) Count() (int64, error)                            { return 0, nil }

type fakeMembershipRepo struct {
	nextID      uint
	memberships map[uint]*models.Membership
}

func (f *fakeMembershipRepo) Create(m *models.Membership) error {
	f.nextID++
	m.ID = f.nextID
	f.memberships[m.ID] = m
	return nil
}
func (f *fakeMembershipRepo) GetByID(id uint) (*models.Membership, error) {
	if m, ok := f.memberships[id]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeMembershipRepo) GetByProviderSubscriptionID(provider, subscriptionID string) (*models.Membership, error) {
	for _, m := range f.memberships {
		if m.Provider == provider && m.ProviderSubscriptionID == subscriptionID {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeMembershipRepo) GetActiveByCustomerID(customerID uint) (*models.Membership, error) {
	for _, m := range f.memberships {
		if m.CustomerID == customerID && m.Status == models.MembershipStatusActive {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeMembershipRepo) Update(m *models.Membership) error { return nil }
func (f *fakeMembershipRepo) UpdateStatus(id uint, status string) error {
	m, ok := f.memberships[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Status = status
	return nil
}
func (f *fakeMembershipRepo) UpdatePeriod(id uint, start, end *time.Time) error {
	m, ok := f.memberships[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.CurrentPeriodStart = start
	m.CurrentPeriodEnd = end
	return nil
}

func newTestService() (*Service, *fakeTierRepo, *fakeApplicationRepo, *fakeCustomerRepo, *fakeMembershipRepo) {
	tiers := &fakeTierRepo{tiers: map[string]*models.Tier{}}
	apps := &fakeApplicationRepo{statuses: map[uint]string{}}
	customers := &fakeCustomerRepo{customers: map[uint]*models.Customer{}}
	memberships := &fakeMembershipRepo{memberships: map[uint]*models.Membership{}}

	svc := NewService(&repository.Repositories{
		Tier:        tiers,
		Application: apps,
		Customer:    customers,
		Membership:  memberships,
	})
	return svc, tiers, apps, customers, memberships
}

func TestProcessEvent_CheckoutCompleted(t *testing.T) {
	svc, tiers, apps, customers, memberships := newTestService()
	capacity := 50
	tiers.tiers["Founders Club"] = &models.Tier{
		ID: 1, Name: "Founders Club", MonthlyPours: 30, Capacity: &capacity, IsActive: true,
	}

	start := time.Now().UTC().Truncate(time.Second)
	end := start.AddDate(0, 1, 0)
	err := svc.ProcessEvent(context.Background(), CheckoutCompleted{
		EventID:        "evt_1",
		SubscriptionID: "sub_1",
		ApplicationID:  "42",
		UserID:         "7",
		TierName:       "Founders Club",
		PeriodStart:    &start,
		PeriodEnd:      &end,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusApproved, apps.statuses[42])

	customer, err := customers.GetByUserID(7)
	require.NoError(t, err)
	assert.Equal(t, 30, customer.PoursBalance)
	assert.Equal(t, "Founders Club", customer.TierName)
	assert.Equal(t, models.CustomerStatusActive, customer.Status)
	assert.NotEmpty(t, customer.MemberNumber)

	membership, err := memberships.GetByProviderSubscriptionID(models.BillingProviderStripe, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, membership.CustomerID)
	assert.Equal(t, models.MembershipStatusActive, membership.Status)
}

func TestProcessEvent_CheckoutCompleted_MissingMetadata(t *testing.T) {
	svc, tiers, _, _, _ := newTestService()
	tiers.tiers["Founders Club"] = &models.Tier{ID: 1, Name: "Founders Club", MonthlyPours: 30}

	tests := []struct {
		name string
		ev   CheckoutCompleted
	}{
		{name: "no application id", ev: CheckoutCompleted{UserID: "7", TierName: "Founders Club"}},
		{name: "no user id", ev: CheckoutCompleted{ApplicationID: "42", TierName: "Founders Club"}},
		{name: "no tier name", ev: CheckoutCompleted{ApplicationID: "42", UserID: "7"}},
		{name: "non-numeric application id", ev: CheckoutCompleted{ApplicationID: "abc", UserID: "7", TierName: "Founders Club"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ProcessEvent(context.Background(), tt.ev)
			require.Error(t, err)
		})
	}
}

func TestProcessEvent_CheckoutCompleted_UnknownTier(t *testing.T) {
	svc, _, apps, _, _ := newTestService()

	err := svc.ProcessEvent(context.Background(), CheckoutCompleted{
		ApplicationID: "42", UserID: "7", TierName: "No Such Tier",
	})
	require.Error(t, err)
	assert.Empty(t, apps.statuses, "application must not be touched when the tier is unknown")
}

func TestProcessEvent_SubscriptionDeleted(t *testing.T) {
	svc, _, _, customers, memberships := newTestService()
	customer := &models.Customer{UserID: 7, Status: models.CustomerStatusActive}
	require.NoError(t, customers.Create(customer))
	membership := &models.Membership{
		CustomerID:             customer.ID,
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: "sub_1",
		Status:                 models.MembershipStatusActive,
	}
	require.NoError(t, memberships.Create(membership))

	err := svc.ProcessEvent(context.Background(), SubscriptionDeleted{SubscriptionID: "sub_1"})
	require.NoError(t, err)

	assert.Equal(t, models.MembershipStatusCancelled, membership.Status)
	assert.Equal(t, models.CustomerStatusInactive, customer.Status)
}

func TestProcessEvent_SubscriptionDeleted_UnknownSubscription(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	err := svc.ProcessEvent(context.Background(), SubscriptionDeleted{SubscriptionID: "sub_missing"})
	require.NoError(t, err, "unknown subscriptions are acknowledged, not retried")
}

func TestProcessEvent_InvoicePaymentSucceeded(t *testing.T) {
	svc, tiers, _, customers, memberships := newTestService()
	tiers.tiers["Founders Club"] = &models.Tier{ID: 1, Name: "Founders Club", MonthlyPours: 30}

	customer := &models.Customer{UserID: 7, TierName: "Founders Club", PoursBalance: 3}
	require.NoError(t, customers.Create(customer))
	membership := &models.Membership{
		CustomerID:             customer.ID,
		TierName:               "Founders Club",
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: "sub_1",
		Status:                 models.MembershipStatusActive,
	}
	require.NoError(t, memberships.Create(membership))

	start := time.Now().UTC().Truncate(time.Second)
	end := start.AddDate(0, 1, 0)
	err := svc.ProcessEvent(context.Background(), InvoicePaymentSucceeded{
		SubscriptionID: "sub_1",
		PeriodStart:    &start,
		PeriodEnd:      &end,
	})
	require.NoError(t, err)

	assert.Equal(t, 33, customer.PoursBalance, "allowance is added on top of the remaining balance")
	require.NotNil(t, membership.CurrentPeriodStart)
	assert.True(t, membership.CurrentPeriodStart.Equal(start))
}

func TestProcessEvent_InvoicePaymentSucceeded_UnknownSubscription(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	err := svc.ProcessEvent(context.Background(), InvoicePaymentSucceeded{SubscriptionID: "sub_missing"})
	require.NoError(t, err)
}

func TestProcessEvent_IgnoredVariants(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	require.NoError(t, svc.ProcessEvent(context.Background(), InvoicePaymentFailed{SubscriptionID: "sub_1"}))
	require.NoError(t, svc.ProcessEvent(context.Background(), UnknownEvent{EventID: "evt_x", Type: "charge.refunded"}))
}
