package service

import "github.com/iliyamo/movie-booking/internal/model"

// Caller identifies who invokes an operation.  It is built once at the
// boundary from the authenticated request and passed explicitly.
type Caller struct {
	AccountID uint64
	Role      string
}

// IsAdmin reports whether the caller has the admin role.
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// CanAccess reports whether the caller may act on a record owned by ownerID.
func (c Caller) CanAccess(ownerID uint64) bool {
	return c.IsAdmin() || (c.AccountID != 0 && c.AccountID == ownerID)
}
