package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	return NewService(NewLocalStorage(), zaptest.NewLogger(t), "test-secret", ttl)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t, time.Hour)

	user, err := svc.Register("farmer@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "hunter2", user.PasswordHash)

	token, err := svc.Login("farmer@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.UserFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t, time.Hour)
	_, err := svc.Register("farmer@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.Register("farmer@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, time.Hour)
	_, err := svc.Register("farmer@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.Login("farmer@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserFromTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t, time.Hour)
	_, err := svc.UserFromToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserFromTokenRejectsExpired(t *testing.T) {
	svc := newTestService(t, time.Nanosecond)
	_, err := svc.Register("farmer@example.com", "hunter2")
	require.NoError(t, err)
	token, err := svc.Login("farmer@example.com", "hunter2")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = svc.UserFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserFromTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewService(NewLocalStorage(), zaptest.NewLogger(t), "other-secret", time.Hour)
	_, err := issuer.Register("farmer@example.com", "hunter2")
	require.NoError(t, err)
	token, err := issuer.Login("farmer@example.com", "hunter2")
	require.NoError(t, err)

	svc := newTestService(t, time.Hour)
	_, err = svc.UserFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
