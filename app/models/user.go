package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_MEMBER = "member"
	ROLE_STAFF  = "staff"
	ROLE_ADMIN  = "admin"

	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email            string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password         string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role             string         `gorm:"type:varchar(50);default:'member'" json:"role" validate:"oneof=member staff admin"`
	Status           string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	Phone            string         `gorm:"type:varchar(30);default:null" json:"phone" validate:"max=30"`
	APITokenHash     string         `gorm:"type:char(64);default:'';index" json:"-"`
	APITokenPrefix   string         `gorm:"type:varchar(20);default:''" json:"api_token_prefix"`
	APITokenIssuedAt *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt      *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     ROLE_MEMBER,
		Status:   STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

var apiTokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const apiTokenPrefix = "phs_"

// HashAPIToken returns the SHA-256 hash for the provided API token.
func HashAPIToken(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// IssueAPIToken generates a new bearer token, stores its hash on the struct,
// and returns the raw secret. Callers must persist the struct afterwards.
func (u *User) IssueAPIToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	encoded := apiTokenEncoding.EncodeToString(b)
	raw := fmt.Sprintf("%s%s", apiTokenPrefix, strings.ToLower(encoded))

	now := time.Now()
	u.APITokenHash = HashAPIToken(raw)
	u.APITokenPrefix = raw[:min(len(raw), 8)]
	u.APITokenIssuedAt = &now
	return raw, nil
}

// HasActiveAPIToken reports whether the user has a bearer token configured.
func (u *User) HasActiveAPIToken() bool {
	return u != nil && u.APITokenHash != ""
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
