package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer     = "ovumcy-bot"
	DefaultTokenTTL = 30 * 24 * time.Hour
	minSecretLength = 32
)

var (
	ErrSecretTooShort = errors.New("secret key must be at least 32 characters")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

type tokenClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens that identify one bot user.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if len(strings.TrimSpace(secret)) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (issuer *TokenIssuer) Issue(userID int64) (string, time.Time, error) {
	now := issuer.now()
	expiresAt := now.Add(issuer.ttl)

	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature and expiry of tokenValue and returns the user id it was issued for.
func (issuer *TokenIssuer) Parse(tokenValue string) (int64, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenValue), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return issuer.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(issuer.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return 0, ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(issuer.now()) {
		return 0, ErrTokenExpired
	}
	if claims.UserID == 0 || claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
