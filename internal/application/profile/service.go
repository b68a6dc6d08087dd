package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/go-profile-api/internal/domain"
	"github.com/go-profile-api/internal/pkg/digest"
	"github.com/go-profile-api/internal/pkg/id"
	"github.com/go-profile-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEmail          = "email"
	fieldFullName       = "fullname"
	fieldCourses        = "courses"
	fieldPasswordDigest = "password_digest"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Profile, error)
	RegisterWithSession(ctx context.Context, req domain.RegisterRequest) (*domain.Session, string, error)
	Check(ctx context.Context, login string) error
	Get(ctx context.Context, login string) (*domain.Profile, error)
	Update(ctx context.Context, login string, req domain.UpdateProfileRequest) error
	Remove(ctx context.Context, login string) error
}

type profileStore interface {
	Create(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, login string) (*domain.Profile, error)
	Update(ctx context.Context, login string, updates map[string]interface{}) error
	Delete(ctx context.Context, login string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

type jwtSigner interface {
	Sign(login, sessionID string) (string, error)
}

type service struct {
	repo        profileStore
	sessionRepo sessionStore
	jwtProvider jwtSigner
}

type ServiceDeps struct {
	ProfileRepo profileStore
	SessionRepo sessionStore
	JWTProvider jwtSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.ProfileRepo,
		sessionRepo: deps.SessionRepo,
		jwtProvider: deps.JWTProvider,
	}
}

// Register validates the candidate profile and inserts it. The store's
// unique constraint on login is the only duplicate check; a collision
// surfaces as domain.ErrConflict without touching the existing record.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Profile, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	p := &domain.Profile{
		Login:          req.Login,
		Email:          req.Email,
		PasswordDigest: digest.Hash(req.Password),
		FullName:       req.FullName,
		Courses:        []string{},
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterWithSession registers the profile and immediately establishes a
// session for it, so a fresh registration is also a login.
func (s *service) RegisterWithSession(ctx context.Context, req domain.RegisterRequest) (*domain.Session, string, error) {
	p, err := s.Register(ctx, req)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		Login:     p.Login,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, "", err
	}
	bearer, err := s.jwtProvider.Sign(p.Login, sess.SessionID)
	if err != nil {
		return nil, "", err
	}
	return sess, bearer, nil
}

// Check reports whether a profile with the given login exists. Used by
// the registration UX before any session exists.
func (s *service) Check(ctx context.Context, login string) error {
	_, err := s.repo.Get(ctx, login)
	return err
}

// Get returns the profile with the stored digest scrubbed. The digest is
// also excluded from JSON serialization, but clearing it here keeps the
// value out of every caller's hands.
func (s *service) Get(ctx context.Context, login string) (*domain.Profile, error) {
	p, err := s.repo.Get(ctx, login)
	if err != nil {
		return nil, err
	}
	p.PasswordDigest = ""
	return p, nil
}

// Update overwrites exactly the fields present in the request. A new
// password is digested before storage; login is never part of the update
// map. An empty request is a successful no-op.
func (s *service) Update(ctx context.Context, login string, req domain.UpdateProfileRequest) error {
	updates := map[string]interface{}{}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Password != nil {
		updates[fieldPasswordDigest] = digest.Hash(*req.Password)
	}
	if req.FullName != nil {
		updates[fieldFullName] = *req.FullName
	}
	if req.Courses != nil {
		updates[fieldCourses] = *req.Courses
	}
	if len(updates) == 0 {
		return nil
	}
	return s.repo.Update(ctx, login, updates)
}

func (s *service) Remove(ctx context.Context, login string) error {
	return s.repo.Delete(ctx, login)
}
