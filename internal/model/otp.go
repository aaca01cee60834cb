package model

import "time"

// OtpPurpose tags what a one-time code authorizes. At most one unexpired
// code may exist per (user, purpose) pair.
type OtpPurpose string

const (
	OtpConfirmEmail  OtpPurpose = "confirm-email"
	OtpResetPassword OtpPurpose = "reset-password"
)

// OtpRecord is a stored one-time code. Only the bcrypt hash of the code
// is ever persisted; the plaintext exists just long enough to hand to the
// notifier. Records disappear on their own at ExpiresAt.
type OtpRecord struct {
	CodeHash  string     `json:"code_hash"`
	UserID    uint64     `json:"user_id"`
	Purpose   OtpPurpose `json:"purpose"`
	ExpiresAt time.Time  `json:"expires_at"`
}
