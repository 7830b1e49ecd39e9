package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 42, "USER", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	id, err := ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 42, Role: "USER"}, id)

	_, err = ParseAccessToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrAccessToken)
}

func TestCheckoutTokenIsNotAnAccessToken(t *testing.T) {
	now := time.Now()
	ct, err := NewCheckoutToken(testSecret, CheckoutClaims{
		PayerID: 1, PaymentID: 2, ScreenID: 3, ShowID: 7, Seats: "A1,A2", Claimant: "c-1",
	}, now, now.Add(5*time.Minute))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, ct.Token)
	assert.ErrorIs(t, err, ErrAccessToken)
}

func TestCheckoutTokenRoundTrip(t *testing.T) {
	now := time.Now()
	ct, err := NewCheckoutToken(testSecret, CheckoutClaims{
		PayerID: 1, PaymentID: 2, ScreenID: 3, ShowID: 7, Seats: "A1,A2", Claimant: "c-1",
	}, now, now.Add(5*time.Minute))
	require.NoError(t, err)

	claims, err := ParseCheckoutToken(testSecret, ct.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.PayerID)
	assert.Equal(t, uint64(2), claims.PaymentID)
	assert.Equal(t, uint64(3), claims.ScreenID)
	assert.Equal(t, uint64(7), claims.ShowID)
	assert.Equal(t, "A1,A2", claims.Seats)
	assert.Equal(t, "c-1", claims.Claimant)
	assert.Equal(t, ct.Exp.Unix(), claims.ExpiresAt.Unix())
}

func TestParseCheckoutTokenKeepsExpiredClaims(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	ct, err := NewCheckoutToken(testSecret, CheckoutClaims{
		PayerID: 1, PaymentID: 2, ScreenID: 3, ShowID: 7, Seats: "A1", Claimant: "c-1",
	}, past, past.Add(time.Minute))
	require.NoError(t, err)

	claims, err := ParseCheckoutToken(testSecret, ct.Token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Before(time.Now()))
}

func TestParseCheckoutTokenRejectsTampering(t *testing.T) {
	now := time.Now()
	ct, err := NewCheckoutToken(testSecret, CheckoutClaims{
		PayerID: 1, PaymentID: 2, ScreenID: 3, ShowID: 7, Seats: "A1", Claimant: "c-1",
	}, now, now.Add(time.Minute))
	require.NoError(t, err)

	_, err = ParseCheckoutToken("wrong", ct.Token)
	assert.ErrorIs(t, err, ErrCheckoutToken)

	_, err = ParseCheckoutToken(testSecret, "not-a-jwt")
	assert.ErrorIs(t, err, ErrCheckoutToken)

	access, err := NewAccessToken(testSecret, 1, "USER", 5)
	require.NoError(t, err)
	_, err = ParseCheckoutToken(testSecret, access.Token)
	assert.ErrorIs(t, err, ErrCheckoutToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "nope"))
}
