package controllers

import (
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/pourhaus/pourhaus/app/models"
	"github.com/pourhaus/pourhaus/app/repository"
)

// useTestRepositories swaps the global factory for one backed by the given
// fakes and restores the previous factory when the test ends.
func useTestRepositories(t *testing.T, repos *repository.Repositories) {
	t.Helper()
	repository.SetGlobalFactory(repository.NewFactoryWithRepositories(repos))
	t.Cleanup(func() {
		repository.SetGlobalFactory(nil)
	})
}

type fakeUserRepo struct {
	users []*models.User
}

func (f *fakeUserRepo) Create(user *models.User) error { f.users = append(f.users, user); return nil }
func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	normalized := strings.TrimSpace(strings.ToLower(email))
	for _, u := range f.users {
		if u.Email == normalized {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetByAPITokenHash(hash string) (*models.User, error) {
	for _, u := range f.users {
		if u.APITokenHash != "" && u.APITokenHash == hash {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) Update(user *models.User) error { return nil }
func (f *fakeUserRepo) List(offset, limit int) ([]models.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) Count() (int64, error) { return 0, nil }

type fakeCustomerRepo struct {
	customers []*models.Customer
}

func (f *fakeCustomerRepo) Create(customer *models.Customer) error {
	customer.ID = uint(len(f.customers) + 1)
	f.customers = append(f.customers, customer)
	return nil
}
func (f *fakeCustomerRepo) GetByID(id uint) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			return c, nil
		}
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
	for _, c := range f.customers {
		if c.SecondaryUserID != nil && *c.SecondaryUserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCustomerRepo) Update(customer *models.Customer) error { return nil }
func (f *fakeCustomerRepo) UpdateStatus(id uint, status string) error { return nil }
func (f *fakeCustomerRepo) IncrementPours(id uint, amount int) error { return nil }
func (f *fakeCustomerRepo) RedeemPours(id uint, quantity int) (bool, error) {
	return false, nil
}
func (f *fakeCustomerRepo) LinkSecondaryUser(customerID, userID uint) (bool, error) {
	for _, c := range f.customers {
		if c.ID == customerID {
			if c.SecondaryUserID != nil {
				return false, nil
			}
			c.SecondaryUserID = &userID
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeCustomerRepo) UnlinkSecondaryUser(customerID uint) error {
	for _, c := range f.customers {
		if c.ID == customerID {
			c.SecondaryUserID = nil
		}
	}
	return nil
}
func (f *fakeCustomerRepo) List(offset, limit int) ([]models.Customer, error) {
	return nil, nil
}
func (f *fakeCustomerRepo) CountActiveByTier(tierName string) (int64, error) { return 0, nil }
func (f *fakeCustomerRepo) Count() (int64, error) { return 0, nil }
