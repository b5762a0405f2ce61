package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pennyledger/pennyledger/internal/shared"
)

type mockUserRepo struct {
	users map[string]*User
}

func (m *mockUserRepo) FindByLogin(ctx context.Context, login string) (*User, error) {
	user, ok := m.users[login]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func serviceFixture(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockUserRepo{users: map[string]*User{
		"alice": {ID: 1, Login: "alice", PasswordHash: string(hash), APIEnabled: true},
		"bob":   {ID: 2, Login: "bob", PasswordHash: string(hash), APIEnabled: false},
	}}
	tokens, err := NewTokenService("service-secret", time.Hour)
	require.NoError(t, err)
	return NewService(repo, tokens)
}

func TestAuthenticateSuccess(t *testing.T) {
	svc := serviceFixture(t)
	user, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestAuthenticateFailuresCollapse(t *testing.T) {
	svc := serviceFixture(t)
	cases := map[string]struct {
		login    string
		password string
	}{
		"unknown login":  {"carol", "s3cret"},
		"wrong password": {"alice", "wrong"},
		"api disabled":   {"bob", "s3cret"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tc.login, tc.password)
			assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
		})
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := serviceFixture(t)
	token, user, err := svc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, user)

	claims, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Login)
}
