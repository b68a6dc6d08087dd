package domain

import "time"

// Profile is the persisted user account record. Login is the natural key
// and is immutable after registration.
type Profile struct {
	Login          string    `json:"login" dynamodbav:"login"`
	Email          string    `json:"email" dynamodbav:"email"`
	PasswordDigest string    `json:"-" dynamodbav:"password_digest"`
	FullName       string    `json:"fullname,omitempty" dynamodbav:"fullname"`
	Courses        []string  `json:"courses" dynamodbav:"courses"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

type RegisterRequest struct {
	Login    string `json:"login" validate:"required,alphanum"`
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"passwd" validate:"required,min=4"`
	FullName string `json:"fullname"`
}

// UpdateProfileRequest carries a partial field set; nil fields are left
// untouched. Login is absent because it cannot be changed.
type UpdateProfileRequest struct {
	Email    *string   `json:"email"`
	Password *string   `json:"passwd"`
	FullName *string   `json:"fullname"`
	Courses  *[]string `json:"courses"`
}
