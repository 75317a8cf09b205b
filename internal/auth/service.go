// Package auth registers and logs in users and issues the bearer tokens the
// HTTP layer verifies.
package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"emocare/backend/internal/apperr"
	"emocare/backend/internal/logging"
	"emocare/backend/internal/model"
	"emocare/backend/internal/profile"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

// UserStore persists users. CreateUser returns a Validation error for a
// duplicate email; UserByEmail returns NotFound when absent.
type UserStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (model.User, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
}

type ProfileCreator interface {
	Create(ctx context.Context, userID string, in profile.Input) error
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Profile  *profile.Input
}

type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type LoginResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

type Service struct {
	users    UserStore
	profiles ProfileCreator
	tokens   *TokenIssuer
	logger   *zap.Logger
	cost     int
}

func NewService(users UserStore, profiles ProfileCreator, tokens *TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

// Register creates the user and, when a profile is supplied, its initial
// profile. A failed profile insert is logged and does not fail registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return model.User{}, apperr.Validation("email is required")
	}
	if len(in.Password) < minPasswordLength {
		return model.User{}, apperr.Validation("password must be at least 6 characters")
	}
	if len(in.Password) > maxPasswordBytes {
		return model.User{}, apperr.Validation("password must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.users.CreateUser(ctx, email, strings.TrimSpace(in.Name), string(hash))
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			return model.User{}, err
		}
		return model.User{}, apperr.Storage("Failed to register user", err)
	}

	if in.Profile != nil && s.profiles != nil {
		if err := s.profiles.Create(ctx, user.ID, *in.Profile); err != nil {
			s.logger.Warn("initial_profile_failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("user_registered",
		zap.String("user_id", user.ID),
		zap.String("email", logging.MaskEmail(email)),
	)
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return LoginResult{}, apperr.Validation("User not found")
		}
		return LoginResult{}, apperr.Storage("Failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return LoginResult{}, apperr.Validation("Invalid password")
		}
		return LoginResult{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Token: token,
		User:  Identity{UserID: user.ID, Email: user.Email, Name: user.Name},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
