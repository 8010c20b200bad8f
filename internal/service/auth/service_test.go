package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/pkg/auth"
	"github.com/jwalitptl/walkin-api/pkg/security"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("clinic-pass")
	require.NoError(t, err)

	logger := zerolog.Nop()
	return NewService(
		[]model.StaffAccount{{Username: "Nurse", PasswordHash: hash}},
		hasher,
		auth.NewJWTService("0123456789abcdef", time.Hour, "walkin"),
		&logger,
	)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tok, err := svc.Login(ctx, "nurse", "clinic-pass")
	require.NoError(t, err)
	assert.Greater(t, tok.ExpiresAt, time.Now().Unix())

	sess, err := svc.Authenticate(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.True(t, sess.IsLoggedIn())
	assert.Equal(t, "nurse", sess.Username())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "nurse", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "doctor", "clinic-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tok, err := svc.Login(ctx, "nurse", "clinic-pass")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, tok.AccessToken))

	_, err = svc.Authenticate(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// a fresh login still works
	tok2, err := svc.Login(ctx, "nurse", "clinic-pass")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, tok2.AccessToken)
	assert.NoError(t, err)
}
