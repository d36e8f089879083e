// Package service contains application services for authentication and tasks.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/task-keeper/internal/crypto"
	"github.com/and161185/task-keeper/internal/errs"
	"github.com/and161185/task-keeper/internal/model"
	"github.com/and161185/task-keeper/internal/repository"
)

// TokenService issues and validates bearer tokens.
type TokenService interface {
	// Issue creates a signed token with the username as subject.
	Issue(username string) (model.AuthToken, error)
	// Validate checks signature and expiry and returns the subject.
	Validate(raw string) (string, error)
}

// AuthService defines registration, login and request-identity resolution.
type AuthService interface {
	// Register creates a new user and immediately authenticates it.
	Register(ctx context.Context, username, email, password string) (model.AuthToken, *model.User, error)
	// Login verifies credentials and issues a token.
	Login(ctx context.Context, username, password string) (model.AuthToken, *model.User, error)
	// ResolveIdentity validates a raw bearer token and resolves its subject to
	// the acting user.
	ResolveIdentity(ctx context.Context, raw string) (*model.User, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens TokenService
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens}
}

// Register creates a user with a hashed password and logs it in. Registration
// implies login: the caller gets a token without a second round trip.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (model.AuthToken, *model.User, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return model.AuthToken{}, nil, err
	}

	// Friendly pre-checks; the storage unique constraints close the race with
	// a concurrent duplicate insert.
	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return model.AuthToken{}, nil, fmt.Errorf("check username: %w", err)
	} else if taken {
		return model.AuthToken{}, nil, errs.ErrUsernameTaken
	}
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return model.AuthToken{}, nil, fmt.Errorf("check email: %w", err)
	} else if taken {
		return model.AuthToken{}, nil, errs.ErrEmailTaken
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return model.AuthToken{}, nil, fmt.Errorf("hash password: %w", err)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.AuthToken{}, nil, err
	}

	u := &model.User{
		ID:           uid,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.AuthToken{}, nil, err
	}

	tok, err := s.tokens.Issue(u.Username)
	if err != nil {
		return model.AuthToken{}, nil, fmt.Errorf("issue token: %w", err)
	}
	return tok, u, nil
}

// Login authenticates a user by username and password. An unknown username and
// a wrong password are indistinguishable to the caller.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.AuthToken, *model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthToken{}, nil, errs.ErrInvalidCredentials
		}
		return model.AuthToken{}, nil, err
	}
	if !crypto.VerifyPassword(password, u.PasswordHash) {
		return model.AuthToken{}, nil, errs.ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.Username)
	if err != nil {
		return model.AuthToken{}, nil, fmt.Errorf("issue token: %w", err)
	}
	return tok, u, nil
}

// ResolveIdentity turns a bearer token into the acting user. A token whose
// subject no longer exists yields ErrUnknownSubject.
func (s *AuthServiceImpl) ResolveIdentity(ctx context.Context, raw string) (*model.User, error) {
	subject, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrUnknownSubject
		}
		return nil, err
	}
	return u, nil
}

func validateRegistration(username, email, password string) error {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "must not be empty"
	}
	if email == "" {
		fields["email"] = "must not be empty"
	}
	if password == "" {
		fields["password"] = "must not be empty"
	}
	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}
