package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CheckoutRole marks continuation tokens so they can never be mistaken
// for access tokens signed with the same algorithm.
const CheckoutRole = "CLIENT_CHALLENGE"

// ErrCheckoutToken is returned when a continuation token is malformed,
// carries a bad signature or misses required claims.  Expiry is not
// checked here; callers compare ExpiresAt against their own clock.
var ErrCheckoutToken = errors.New("invalid checkout token")

// CheckoutClaims is the checkout context carried by a continuation
// token between StartCheckout and the payment gateway callback.
type CheckoutClaims struct {
	PayerID   uint64 `json:"payer_id"`
	PaymentID uint64 `json:"payment_id"`
	ScreenID  uint64 `json:"screen_id"`
	ShowID    uint64 `json:"show_id"`
	Seats     string `json:"seats"`    // comma separated seat codes
	Claimant  string `json:"claimant"` // checkout attempt holding the seat locks
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// CheckoutToken is a signed continuation token and its expiry.
type CheckoutToken struct {
	Token string
	Exp   time.Time
}

// NewCheckoutToken signs claims with HS256.  The token expires at exp,
// which callers set to the seat lock expiry.
func NewCheckoutToken(secret string, claims CheckoutClaims, issuedAt, exp time.Time) (CheckoutToken, error) {
	claims.Role = CheckoutRole
	claims.IssuedAt = jwt.NewNumericDate(issuedAt.UTC())
	claims.ExpiresAt = jwt.NewNumericDate(exp.UTC())
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return CheckoutToken{}, err
	}
	return CheckoutToken{Token: signed, Exp: claims.ExpiresAt.Time}, nil
}

// ParseCheckoutToken verifies the signature of raw and returns its
// claims.  Time based claims are left to the caller.
func ParseCheckoutToken(secret, raw string) (*CheckoutClaims, error) {
	claims := &CheckoutClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutToken, err)
	}
	if claims.Role != CheckoutRole || claims.PaymentID == 0 || claims.PayerID == 0 ||
		claims.ScreenID == 0 || claims.ShowID == 0 || claims.Seats == "" || claims.Claimant == "" ||
		claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing claims", ErrCheckoutToken)
	}
	return claims, nil
}
