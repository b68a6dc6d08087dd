package http

import (
	"github.com/go-profile-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-profile-api/internal/infrastructure/jwt"
	"github.com/go-profile-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ProfileRepo    *dynamo.ProfileRepo
	ActivationRepo *dynamo.ActivationRepo
	SessionRepo    *dynamo.SessionRepo
	Mailer         smtp.Mailer
	JWTProvider    *jwtinfra.Provider
}
