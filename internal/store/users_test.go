package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apierrors "taxwizz/internal/errors"
	"taxwizz/pkg/contracts/domain"
)

func TestMemoryUserStore_AddAndFind(t *testing.T) {
	s := NewMemoryUserStore()

	user := domain.User{
		Username:     "alice",
		Name:         "Alice",
		Email:        "alice@taxwizz.com",
		Role:         domain.RoleUser,
		PasswordHash: []byte("$2a$10$fake"),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.Add(user))

	found, err := s.FindByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.Name, found.Name)
	assert.Equal(t, user.Email, found.Email)
	assert.Equal(t, user.Role, found.Role)
}

func TestMemoryUserStore_FindMissing(t *testing.T) {
	s := NewMemoryUserStore()

	_, err := s.FindByUsername("ghost")
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)
}

func TestMemoryUserStore_AddDuplicate(t *testing.T) {
	s := NewMemoryUserStore()
	require.NoError(t, s.Add(domain.User{Username: "alice"}))

	err := s.Add(domain.User{Username: "alice"})
	assert.ErrorContains(t, err, "already exists")
}

func TestSeedDefaultUsers(t *testing.T) {
	s := NewMemoryUserStore()
	require.NoError(t, SeedDefaultUsers(s))

	admin, err := s.FindByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "Administrator", admin.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte("admin123")))

	demo, err := s.FindByUsername("user")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, demo.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword(demo.PasswordHash, []byte("user123")))
	assert.Error(t, bcrypt.CompareHashAndPassword(demo.PasswordHash, []byte("wrong")))
}
