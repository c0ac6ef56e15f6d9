package qrtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pourhaus/pourhaus/app/models"
)

// TTL is the fixed validity window of a redemption token.
const TTL = 10 * time.Minute

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the signed assertion presented at the tap. It identifies the
// customer and tier and whether the bearer is the linked family member.
// Tokens are never persisted; expiry is the only revocation mechanism.
type Claims struct {
	CustomerID  uint   `json:"customer_id"`
	UserID      uint   `json:"user_id"`
	TierName    string `json:"tier"`
	IsSecondary bool   `json:"is_secondary"`
	jwt.RegisteredClaims
}

// Issue mints a redemption token for the given customer. callerUserID is the
// authenticated user requesting the token, which may be the customer's
// secondary user.
func Issue(customer *models.Customer, callerUserID uint, secret string) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("secret is required for token generation")
	}
	if customer == nil {
		return "", time.Time{}, errors.New("customer is required")
	}

	now := time.Now()
	expiresAt := now.Add(TTL)
	claims := Claims{
		CustomerID:  customer.ID,
		UserID:      customer.UserID,
		TierName:    customer.TierName,
		IsSecondary: callerUserID != customer.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a redemption token. Used by the
// point-of-service redemption path.
func Verify(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
