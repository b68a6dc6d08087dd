package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-profile-api/internal/domain"
	"github.com/go-profile-api/internal/infrastructure/smtp"
	"github.com/go-profile-api/internal/pkg/digest"
	"github.com/go-profile-api/internal/pkg/id"
	"github.com/go-profile-api/internal/pkg/password"
	"github.com/go-profile-api/internal/pkg/validate"
)

type Service interface {
	// Authenticate checks login+password and returns the opaque identity
	// (the login itself) on success. A missing profile or a digest
	// mismatch yields domain.ErrUnauthorized; store failures propagate
	// unwrapped so the handler maps them to an internal error.
	Authenticate(ctx context.Context, login, passwd string) (string, error)
	RequestReset(ctx context.Context, req domain.ResetRequest) error
	RedeemReset(ctx context.Context, req domain.RedeemRequest) error
}

type profileStore interface {
	Get(ctx context.Context, login string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Update(ctx context.Context, login string, updates map[string]interface{}) error
}

type activationStore interface {
	Put(ctx context.Context, a *domain.Activation) error
	FindByEmailAndCode(ctx context.Context, email, code string) ([]domain.Activation, error)
	Delete(ctx context.Context, activationID string) error
}

type service struct {
	profiles    profileStore
	activations activationStore
	mailer      smtp.Mailer
	now         func() time.Time
}

func NewService(profiles profileStore, activations activationStore, mailer smtp.Mailer) Service {
	return &service{
		profiles:    profiles,
		activations: activations,
		mailer:      mailer,
		now:         time.Now,
	}
}

func (s *service) Authenticate(ctx context.Context, login, passwd string) (string, error) {
	p, err := s.profiles.Get(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return "", err
	}
	if p.PasswordDigest != digest.Hash(passwd) {
		return "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return p.Login, nil
}

// RequestReset is phase 1 of the reset protocol: issue a fresh random
// password and a 6-digit code, persist them as a pending activation and
// mail both to the profile's address. The response does not wait for the
// mail: dispatch failures are logged, never surfaced.
func (s *service) RequestReset(ctx context.Context, req domain.ResetRequest) error {
	if err := validate.Struct(&req); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	p, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	newPasswd, err := password.New(password.GeneratedLength)
	if err != nil {
		return err
	}
	code, err := password.NewActivationCode()
	if err != nil {
		return err
	}

	a := &domain.Activation{
		ActivationID:   id.New(),
		Email:          p.Email,
		Code:           code,
		PasswordDigest: digest.Hash(newPasswd),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.activations.Put(ctx, a); err != nil {
		return err
	}

	go func(email, fullname string) {
		body := fmt.Sprintf("Hello, %s!\n\nYour new password: %s\nActivation number: %s", fullname, newPasswd, code)
		if err := s.mailer.SendEmail(email, "reset password", body); err != nil {
			slog.Error("failed to send reset mail", "email", email, "err", err)
		}
	}(p.Email, p.FullName)

	return nil
}

// RedeemReset is phase 2: given email+code, promote the newest matching
// ticket's digest to the profile's stored password. The redeemed ticket
// is deleted afterwards so a code cannot be replayed; other outstanding
// tickets for the email stay valid until the sweeper takes them.
func (s *service) RedeemReset(ctx context.Context, req domain.RedeemRequest) error {
	if err := validate.Struct(&req); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	matches, err := s.activations.FindByEmailAndCode(ctx, req.Email, req.Key)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no matching activation: %w", domain.ErrNotFound)
	}
	ticket := matches[0]

	p, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if err := s.profiles.Update(ctx, p.Login, map[string]interface{}{"password_digest": ticket.PasswordDigest}); err != nil {
		return err
	}
	if err := s.activations.Delete(ctx, ticket.ActivationID); err != nil {
		slog.Warn("failed to delete redeemed activation", "email", req.Email, "err", err)
	}
	return nil
}
