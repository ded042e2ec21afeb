package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"

	"taxwizz/internal/config"
	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/infrastructure"
	"taxwizz/internal/store"
	"taxwizz/pkg/contracts/domain"
)

// AuthService handles login, logout, and token validation
type AuthService struct {
	users      store.UserStore
	activities store.ActivityStore
	secret     []byte
	tokenTTL   time.Duration
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// Session is the result of a successful login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

// NewAuthService creates a new authentication service
func NewAuthService(users store.UserStore, activities store.ActivityStore, cfg config.AuthConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		activities: activities,
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.AccessTokenTTL,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "auth")),
		now:        time.Now,
	}
}

// Login authenticates a user and issues an access token. Unknown users
// and wrong passwords both surface as ErrInvalidCredentials so callers
// cannot probe which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		s.recordLogin(ctx, "failure")
		s.logger.WarnContext(ctx, "login attempt for unknown user", slog.String("username", username))
		return Session{}, apierrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.recordLogin(ctx, "failure")
		s.logger.WarnContext(ctx, "login attempt with wrong password", slog.String("username", username))
		return Session{}, apierrors.ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  user.Username,
		"name": user.Name,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.recordLogin(ctx, "failure")
		return Session{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.activities.Record(user.Username, domain.Activity{
		Type:    domain.ActivityLogin,
		Message: "Logged in",
	})
	s.recordLogin(ctx, "success")
	s.logger.InfoContext(ctx, "user logged in",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)))

	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout records the logout activity. Tokens are self-expiring, so there
// is no server-side session to tear down.
func (s *AuthService) Logout(ctx context.Context, username string) {
	s.activities.Record(username, domain.Activity{
		Type:    domain.ActivityLogout,
		Message: "Logged out",
	})
	s.logger.InfoContext(ctx, "user logged out", slog.String("username", username))
}

// ValidateToken parses and verifies an access token and resolves its user
func (s *AuthService) ValidateToken(tokenString string) (domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.User{}, apierrors.ErrTokenExpired
		}
		return domain.User{}, apierrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return domain.User{}, apierrors.ErrTokenInvalid
	}

	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return domain.User{}, apierrors.ErrTokenInvalid
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		// The account vanished after the token was issued
		return domain.User{}, apierrors.ErrTokenInvalid
	}

	return user, nil
}

func (s *AuthService) recordLogin(ctx context.Context, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.LoginsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
