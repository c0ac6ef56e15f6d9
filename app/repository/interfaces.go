package repository

import (
	"time"

	"github.com/pourhaus/pourhaus/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPITokenHash(hash string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// TierRepository defines read access to the tier catalog plus the
// admin-only mutations. Runtime components only ever read tiers.
type TierRepository interface {
	Create(tier *models.Tier) error
	GetByID(id uint) (*models.Tier, error)
	GetByName(name string) (*models.Tier, error)
	GetActive() ([]models.Tier, error)
	GetAll() ([]models.Tier, error)
	Update(tier *models.Tier) error
}

// ApplicationRepository defines the interface for membership applications
type ApplicationRepository interface {
	Create(app *models.Application) error
	GetByID(id uint) (*models.Application, error)
	GetPendingByUserID(userID uint) (*models.Application, error)
	ListByStatus(status string, offset, limit int) ([]models.Application, error)
	List(offset, limit int) ([]models.Application, error)
	Update(app *models.Application) error
	UpdateStatus(id uint, status string, reviewedBy *uint) error
	Count() (int64, error)
}

// CustomerRepository defines the interface for customer records.
// IncrementPours and RedeemPours are single atomic UPDATEs so concurrent
// invoice events or redemptions never lose an increment.
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
	GetByUserID(userID uint) (*models.Customer, error)
	GetBySecondaryUserID(userID uint) (*models.Customer, error)
	Update(customer *models.Customer) error
	UpdateStatus(id uint, status string) error
	IncrementPours(id uint, amount int) error
	RedeemPours(id uint, quantity int) (bool, error)
	LinkSecondaryUser(customerID, userID uint) (bool, error)
	UnlinkSecondaryUser(customerID uint) error
	List(offset, limit int) ([]models.Customer, error)
	CountActiveByTier(tierName string) (int64, error)
	Count() (int64, error)
}

// MembershipRepository defines the interface for membership records
type MembershipRepository interface {
	Create(membership *models.Membership) error
	GetByID(id uint) (*models.Membership, error)
	GetByProviderSubscriptionID(provider, subscriptionID string) (*models.Membership, error)
	GetActiveByCustomerID(customerID uint) (*models.Membership, error)
	Update(membership *models.Membership) error
	UpdateStatus(id uint, status string) error
	UpdatePeriod(id uint, start, end *time.Time) error
}

// PourRepository defines the interface for the append-only pour ledger
type PourRepository interface {
	Create(record *models.PourRecord) error
	ListByCustomerID(customerID uint, offset, limit int) ([]models.PourRecord, error)
	SumRedeemedInPeriod(customerID uint, start, end time.Time) (int, error)
	CountSince(since time.Time) (int64, error)
}

// WebhookEventRepository persists provider webhook deliveries idempotently
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
	GetByID(id uint) (*models.WebhookEvent, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Tier         TierRepository
	Application  ApplicationRepository
	Customer     CustomerRepository
	Membership   MembershipRepository
	Pour         PourRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Tier:         NewTierRepository(db),
		Application:  NewApplicationRepository(db),
		Customer:     NewCustomerRepository(db),
		Membership:   NewMembershipRepository(db),
		Pour:         NewPourRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
