package server

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CronScope is the scope claim a signed trigger token must carry
const CronScope = "cron"

// CronClaims are the claims of a signed administrative trigger token
type CronClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// IssueCronToken signs a short-lived trigger token with the shared secret
func IssueCronToken(secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("cron token: empty secret")
	}
	claims := CronClaims{
		Scope: CronScope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseCronToken validates an HS256 trigger token. Tokens without an expiry
// or without the cron scope are rejected.
func ParseCronToken(tokenString, secret string) (*CronClaims, error) {
	if tokenString == "" {
		return nil, errors.New("cron token: empty token")
	}
	if secret == "" {
		return nil, errors.New("cron token: empty secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	claims := &CronClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("cron token: invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("cron token: invalid token")
	}
	if claims.Scope != CronScope {
		return nil, errors.New("cron token: missing cron scope")
	}
	return claims, nil
}
