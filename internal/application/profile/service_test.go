package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/go-profile-api/internal/domain"
	"github.com/go-profile-api/internal/pkg/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProfileStore) Get(ctx context.Context, login string) (*domain.Profile, error) {
	args := m.Called(ctx, login)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProfileStore) Update(ctx context.Context, login string, updates map[string]interface{}) error {
	return m.Called(ctx, login, updates).Error(0)
}
func (m *mockProfileStore) Delete(ctx context.Context, login string) error {
	return m.Called(ctx, login).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(login, sessionID string) (string, error) {
	args := m.Called(login, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newService(ps *mockProfileStore, ss *mockSessionStore, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{ProfileRepo: ps, SessionRepo: ss, JWTProvider: jwt})
}

func baseReq() domain.RegisterRequest {
	return domain.RegisterRequest{
		Login:    "alice42",
		Email:    "alice@example.com",
		Password: "hunter2",
		FullName: "Alice Smith",
	}
}

// --- Register tests ---

func TestRegister_StoresDigestNotPlaintext(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.Login == "alice42" &&
			p.PasswordDigest == digest.Hash("hunter2") &&
			p.PasswordDigest != "hunter2" &&
			len(p.Courses) == 0 &&
			!p.CreatedAt.IsZero()
	})).Return(nil)

	svc := newService(ps, nil, nil)
	p, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "alice42", p.Login)
	ps.AssertExpectations(t)
}

func TestRegister_DuplicateLoginConflict(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	svc := newService(ps, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_ValidationFailures(t *testing.T) {
	cases := map[string]domain.RegisterRequest{
		"missing login":       {Email: "a@b.c", Password: "1234"},
		"missing email":       {Login: "alice", Password: "1234"},
		"missing password":    {Login: "alice", Email: "a@b.c"},
		"login with symbols":  {Login: "al ice!", Email: "a@b.c", Password: "1234"},
		"malformed email":     {Login: "alice", Email: "not-an-email", Password: "1234"},
		"password too short":  {Login: "alice", Email: "a@b.c", Password: "123"},
	}
	ps := &mockProfileStore{} // no expectations: validation must short-circuit
	svc := newService(ps, nil, nil)

	for name, req := range cases {
		_, err := svc.Register(context.Background(), req)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), name)
	}
	ps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterWithSession_IssuesBearer(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Create", mock.Anything, mock.Anything).Return(nil)
	ss := &mockSessionStore{}
	ss.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.Login == "alice42" && s.Enable && s.SessionID != ""
	})).Return(nil)
	jwt := &mockJWTSigner{}
	jwt.On("Sign", "alice42", mock.Anything).Return("bearer-token", nil)

	svc := newService(ps, ss, jwt)
	sess, bearer, err := svc.RegisterWithSession(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", bearer)
	assert.Equal(t, "alice42", sess.Login)
	ss.AssertExpectations(t)
}

// --- CRUD tests ---

func TestCheck_Found(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, "alice42").Return(&domain.Profile{Login: "alice42"}, nil)

	svc := newService(ps, nil, nil)
	assert.NoError(t, svc.Check(context.Background(), "alice42"))
}

func TestCheck_NotFound(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := newService(ps, nil, nil)
	assert.True(t, errors.Is(svc.Check(context.Background(), "ghost"), domain.ErrNotFound))
}

func TestGet_ScrubsDigest(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, "alice42").Return(&domain.Profile{
		Login:          "alice42",
		PasswordDigest: digest.Hash("hunter2"),
	}, nil)

	svc := newService(ps, nil, nil)
	p, err := svc.Get(context.Background(), "alice42")

	require.NoError(t, err)
	assert.Empty(t, p.PasswordDigest)
}

func TestUpdate_PartialFields(t *testing.T) {
	email := "new@example.com"
	passwd := "newpass"
	ps := &mockProfileStore{}
	ps.On("Update", mock.Anything, "alice42", map[string]interface{}{
		"email":           email,
		"password_digest": digest.Hash(passwd),
	}).Return(nil)

	svc := newService(ps, nil, nil)
	err := svc.Update(context.Background(), "alice42", domain.UpdateProfileRequest{
		Email:    &email,
		Password: &passwd,
	})

	require.NoError(t, err)
	ps.AssertExpectations(t)
}

func TestUpdate_Courses(t *testing.T) {
	courses := []string{"cs101", "math202", "cs101"}
	ps := &mockProfileStore{}
	ps.On("Update", mock.Anything, "alice42", map[string]interface{}{
		"courses": courses,
	}).Return(nil)

	svc := newService(ps, nil, nil)
	require.NoError(t, svc.Update(context.Background(), "alice42", domain.UpdateProfileRequest{Courses: &courses}))
	ps.AssertExpectations(t)
}

func TestUpdate_EmptyRequestIsNoOp(t *testing.T) {
	ps := &mockProfileStore{}

	svc := newService(ps, nil, nil)
	require.NoError(t, svc.Update(context.Background(), "alice42", domain.UpdateProfileRequest{}))
	ps.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemove(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Delete", mock.Anything, "alice42").Return(nil)

	svc := newService(ps, nil, nil)
	require.NoError(t, svc.Remove(context.Background(), "alice42"))
	ps.AssertExpectations(t)
}
