package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// CanTransitionTo reports whether moving from s to next is allowed.
// Only PENDING -> SUCCESS, PENDING -> FAILED and SUCCESS -> REFUNDED are legal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentPending:
		return next == PaymentSuccess || next == PaymentFailed
	case PaymentSuccess:
		return next == PaymentRefunded
	}
	return false
}

// PaymentMethod is the instrument a payer uses at the gateway.
type PaymentMethod string

const (
	MethodDebitCard  PaymentMethod = "DEBIT_CARD"
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodNetBanking PaymentMethod = "NET_BANKING"
	MethodUPI        PaymentMethod = "UPI"
)

// Valid reports whether m is one of the supported methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodDebitCard, MethodCreditCard, MethodNetBanking, MethodUPI:
		return true
	}
	return false
}

// Payment records the money side of a checkout attempt.  It is created
// PENDING when seats are locked and carries enough of the attempt
// (claimant, screen, show, seats) for stale attempts to be cleaned up.
//
// Fields:
//
//	ID        – primary key identifier.
//	PayerID   – account paying for the seats.
//	Amount    – payable amount after any promo (2 decimal places).
//	Method    – payment method chosen by the payer.
//	PromoCode – promo applied to the amount (nullable).
//	Status    – PENDING, SUCCESS, FAILED or REFUNDED.
//	ClaimRef  – claimant marker of the checkout attempt.
//	ScreenID  – screen of the locked seats.
//	ShowID    – show the seats were locked for.
//	SeatCodes – comma separated seat codes.
//	CreatedAt – when the checkout attempt started.
//	UpdatedAt – last status change.
type Payment struct {
	ID        uint64          // payments.id
	PayerID   uint64          // payments.payer_id
	Amount    decimal.Decimal // payments.amount
	Method    PaymentMethod   // payments.method
	PromoCode *string         // payments.promo_code
	Status    PaymentStatus   // payments.status
	ClaimRef  string          // payments.claim_ref
	ScreenID  uint64          // payments.screen_id
	ShowID    uint64          // payments.show_id
	SeatCodes string          // payments.seat_codes
	CreatedAt time.Time       // payments.created_at
	UpdatedAt time.Time       // payments.updated_at
}
