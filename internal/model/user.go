package model

import "time"

// Roles stored in users.role.  Admin and super-admin accounts are signed
// with the elevated "System" signature level; everyone else gets "Bearer".
const (
	RoleUser       = "USER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// Authentication providers stored in users.provider.  A SYSTEM account owns
// a password hash; an externally-authenticated account (e.g. GOOGLE) never
// does — exactly one of the two holds for any user.
const (
	ProviderSystem = "SYSTEM"
	ProviderGoogle = "GOOGLE"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted because these structs are used internally by the
// repository layer; handlers define separate response types.
//
// Fields:
//  ID                    – primary key identifier of the user.
//  FirstName, LastName   – split form of the display name.
//  Email                 – unique email address.
//  PasswordHash          – bcrypt hashed password; nil for external providers.
//  Role                  – USER, ADMIN or SUPER_ADMIN.
//  Provider              – SYSTEM or an external identity provider.
//  ProfileImage          – URL of the profile picture, if any.
//  ConfirmedAt           – when the email was confirmed (nil = unconfirmed).
//  ChangeCredentialsTime – tokens issued before this instant are invalid.
//  CreatedAt, UpdatedAt  – row timestamps.
type User struct {
	ID           uint64     // users.id
	FirstName    string     // users.first_name
	LastName     string     // users.last_name
	Email        string     // users.email
	PasswordHash *string    // users.password_hash (nullable)
	Role         string     // users.role
	Provider     string     // users.provider
	ProfileImage *string    // users.profile_image (nullable)
	ConfirmedAt  *time.Time // users.confirmed_at (nullable)
	ChangeCredentialsTime *time.Time // users.change_credentials_time (nullable)
	Freezable
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}

// Username joins the split name columns back into the display name the
// API exposes.
func (u User) Username() string { return u.FirstName + " " + u.LastName }

// Confirmed reports whether the account's email has been confirmed.
func (u User) Confirmed() bool { return u.ConfirmedAt != nil }
