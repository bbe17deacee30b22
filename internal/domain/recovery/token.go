package recovery

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures, and tokens
	// issued for a different purpose. No mutation follows from any of them.
	ErrTokenInvalid = errors.New("reset token invalid")

	// ErrTokenExpired is returned past the token's maximum age.
	ErrTokenExpired = errors.New("reset token expired")
)

// tokenPurpose domain-separates recovery tokens from any other signed token
// minted with the same key.
const tokenPurpose = "password-reset"

// linkTokenMaxAge is how long a signed recovery link stays redeemable.
const linkTokenMaxAge = time.Hour

type linkClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// TokenCodec mints and verifies the signed link tokens of recovery
// protocol A. Tokens embed the account email and issuance time; signature and
// age are checked at redemption, with no server-side token state.
type TokenCodec struct {
	key []byte
	now func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{key: []byte(secret), now: time.Now}
}

// Issue produces a signed token for the given email.
func (c *TokenCodec) Issue(email string) (string, error) {
	now := c.now()
	claims := linkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(linkTokenMaxAge)),
		},
		Purpose: tokenPurpose,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return token, nil
}

// Redeem verifies the token and returns the embedded email. Expired tokens
// yield ErrTokenExpired; every other verification failure yields
// ErrTokenInvalid.
func (c *TokenCodec) Redeem(token string) (string, error) {
	claims := &linkClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !parsed.Valid || claims.Purpose != tokenPurpose || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
