package model

import "time"

// Account roles carried in the access token "role" claim.
const (
	RoleUser           = "USER"
	RoleAdmin          = "ADMIN"
	RolePaymentGateway = "PAYMENT_GATEWAY"
)

// User represents an application account as stored in the `users`
// table.  Handlers define their own response types; this struct is used
// by the repository and service layers.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address, also the notification address.
//	FullName     – display name used in notifications.
//	PasswordHash – bcrypt hashed password.
//	Role         – USER, ADMIN or PAYMENT_GATEWAY.
//	IsActive     – whether the account may sign in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	FullName     string    // users.full_name
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
