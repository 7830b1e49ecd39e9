package service

// Stores bundles the storage ports a deployment provides.  The MySQL and
// in-memory backends both build one.
type Stores struct {
	Tx        TxRunner
	Seats     SeatStore
	SeatTypes SeatTypeStore
	Promos    PromoStore
	Payments  PaymentStore
	Tickets   TicketStore
	Shows     ShowStore
	Screens   ScreenStore
	Accounts  AccountStore
}
