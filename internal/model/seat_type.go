package model

import "github.com/shopspring/decimal"

// SeatType is a price tier shared by many seats (e.g. "Regular",
// "Recliner").  Price is the amount charged for one seat of this type.
type SeatType struct {
	ID    uint64          // seat_types.id
	Name  string          // seat_types.name
	Price decimal.Decimal // seat_types.price (DECIMAL(10,2))
}
