package store

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	apierrors "taxwizz/internal/errors"
	"taxwizz/pkg/contracts/domain"
)

// UserStore resolves accounts for authentication.
type UserStore interface {
	// FindByUsername returns the stored user or ErrUserNotFound.
	FindByUsername(username string) (domain.User, error)
}

// MemoryUserStore is an in-memory UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserStore creates an empty user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]domain.User)}
}

// Add stores a user, failing when the username is taken
func (s *MemoryUserStore) Add(user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return fmt.Errorf("user %s already exists", user.Username)
	}
	s.users[user.Username] = user
	return nil
}

// FindByUsername returns a copy of the stored user
func (s *MemoryUserStore) FindByUsername(username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[username]
	if !exists {
		return domain.User{}, apierrors.ErrUserNotFound
	}
	return user, nil
}

// seedAccount pairs a plaintext password with its profile for seeding.
type seedAccount struct {
	username string
	password string
	name     string
	email    string
	role     domain.Role
}

// SeedDefaultUsers populates the store with the built-in admin and demo
// accounts. Password hashes are computed at seed time so no hash material
// lives in the source.
func SeedDefaultUsers(s *MemoryUserStore) error {
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	accounts := []seedAccount{
		{username: "admin", password: "admin123", name: "Administrator", email: "admin@taxwizz.com", role: domain.RoleAdmin},
		{username: "user", password: "user123", name: "Demo User", email: "user@taxwizz.com", role: domain.RoleUser},
	}

	for _, account := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(account.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", account.username, err)
		}

		err = s.Add(domain.User{
			Username:     account.username,
			Name:         account.name,
			Email:        account.email,
			Role:         account.role,
			PasswordHash: hash,
			CreatedAt:    createdAt,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
