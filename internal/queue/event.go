// Package queue defines message payloads exchanged over the message broker.
package queue

// OtpIssuedQueue carries one-time-code issuance events to the delivery
// worker; the actual email sender lives outside this service.
const OtpIssuedQueue = "otp.issued"

// OtpIssuedEvent is published once per successful code issuance. This is
// the only place the plaintext code ever leaves the process: the core
// stores just the bcrypt hash, and the consumer on the other end owns
// delivery to the recipient.
type OtpIssuedEvent struct {
	Email    string `json:"email"`
	Purpose  string `json:"purpose"`
	Code     string `json:"code"`
	IssuedAt string `json:"issued_at"`
}
