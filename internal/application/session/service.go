package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-profile-api/internal/domain"
	"github.com/go-profile-api/internal/pkg/id"
	"github.com/go-profile-api/internal/pkg/validate"
)

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"passwd" validate:"required"`
}

type LoginResult struct {
	Bearer  string
	Session *domain.Session
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
}

type authenticator interface {
	Authenticate(ctx context.Context, login, passwd string) (string, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

type jwtSigner interface {
	Sign(login, sessionID string) (string, error)
}

type service struct {
	sessionRepo sessionStore
	auth        authenticator
	jwtProvider jwtSigner
}

func NewService(sessionRepo sessionStore, auth authenticator, jwtProvider jwtSigner) Service {
	return &service{
		sessionRepo: sessionRepo,
		auth:        auth,
		jwtProvider: jwtProvider,
	}
}

// Login authenticates the credentials and issues a fresh session record
// plus a bearer bound to it. The identity inside the bearer is the login.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	identity, err := s.auth.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		Login:     identity,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(identity, sess.SessionID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Bearer: bearer, Session: sess}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessionRepo.Get(ctx, sessionID)
}
