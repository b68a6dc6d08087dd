package handler

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-profile-api/internal/application/session"
	"github.com/go-profile-api/internal/config"
	"github.com/go-profile-api/internal/domain"
	jwtinfra "github.com/go-profile-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessionService struct{ mock.Mock }

func (m *mockSessionService) Login(ctx context.Context, req session.LoginRequest) (*session.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*session.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionService) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}
func (m *mockSessionService) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	provider, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         time.Hour,
	})
	require.NoError(t, err)
	return provider
}

func TestLogin_ReturnsBearer(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Login", mock.Anything, session.LoginRequest{Login: "alice42", Password: "hunter2"}).
		Return(&session.LoginResult{
			Bearer:  "bearer-token",
			Session: &domain.Session{SessionID: "sess-1", Login: "alice42", Enable: true},
		}, nil)

	h := NewSessionHandler(svc, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/login",
		strings.NewReader(`{"login":"alice42","passwd":"hunter2"}`))
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Bearer":"bearer-token"`)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthorized)

	h := NewSessionHandler(svc, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/login",
		strings.NewReader(`{"login":"alice42","passwd":"wrong"}`))
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_WithValidBearerDisablesSession(t *testing.T) {
	provider := newTestProvider(t)
	token, err := provider.Sign("alice42", "sess-1")
	require.NoError(t, err)

	svc := &mockSessionService{}
	svc.On("Logout", mock.Anything, "sess-1").Return(nil)

	h := NewSessionHandler(svc, provider)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")
	svc.AssertExpectations(t)
}

func TestLogout_WithoutBearerStillSucceeds(t *testing.T) {
	svc := &mockSessionService{}

	h := NewSessionHandler(svc, newTestProvider(t))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/logout", nil)
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")
	svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

func TestLogout_WithGarbageBearerStillSucceeds(t *testing.T) {
	svc := &mockSessionService{}

	h := NewSessionHandler(svc, newTestProvider(t))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

func TestGetCurrent_ReturnsSession(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("GetCurrent", mock.Anything, "sess-1").
		Return(&domain.Session{SessionID: "sess-1", Login: "alice42", Enable: true}, nil)

	h := NewSessionHandler(svc, nil)
	rec := httptest.NewRecorder()
	req := withClaims(httptest.NewRequest(http.MethodGet, "/v1/sessions", nil), "alice42", "sess-1")
	h.GetCurrent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sess-1"`)
}

func TestGetCurrent_NoClaims(t *testing.T) {
	h := NewSessionHandler(&mockSessionService{}, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	h.GetCurrent(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
