package domain

import "time"

// Activation is an ephemeral pending-reset ticket. Several tickets may be
// outstanding for the same email; redemption matches on email+code and
// consumes exactly one. The hourly sweeper removes tickets older than the
// retention window regardless of redemption state.
type Activation struct {
	ActivationID   string    `json:"-" dynamodbav:"activation_id"`
	Email          string    `json:"email" dynamodbav:"email"`
	Code           string    `json:"key" dynamodbav:"code"`
	PasswordDigest string    `json:"-" dynamodbav:"password_digest"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

type ResetRequest struct {
	Email string `json:"email" validate:"required,loose_email"`
}

type RedeemRequest struct {
	Email string `json:"email" validate:"required,loose_email"`
	Key   string `json:"key" validate:"required"`
}
