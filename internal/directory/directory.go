// ABOUTME: User directory service: registration, authentication, and listing.
// ABOUTME: Hashes credentials with bcrypt and returns typed errors for the UI layer.

package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/coven-messenger/internal/store"
)

// ErrDuplicateUsername is returned by Register when the username is taken.
var ErrDuplicateUsername = errors.New("username already taken")

// ErrInvalidCredentials is returned by Authenticate when no user matches.
// Unknown usernames and wrong passwords are deliberately indistinguishable
// to avoid username enumeration.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports a missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// dummyHash is compared against when no user row exists, so login timing
// doesn't reveal whether a username is registered.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserStore defines what the directory needs from storage
type UserStore interface {
	CreateUser(ctx context.Context, user *store.User) error
	GetUser(ctx context.Context, id int64) (*store.User, error)
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
	ListUsersExcept(ctx context.Context, id int64) ([]*store.User, error)
}

// Service implements the user directory over a UserStore.
type Service struct {
	store  UserStore
	logger *slog.Logger
}

// New creates a new directory service
func New(userStore UserStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  userStore,
		logger: logger.With("component", "directory"),
	}
}

// Register creates a new account. profilePic is an opaque URI and may be
// empty. Returns a ValidationError when a required field is empty,
// ErrDuplicateUsername when the username is taken, and otherwise the
// created user with its assigned ID.
func (s *Service) Register(ctx context.Context, username, password, fullName, profilePic string) (*store.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &ValidationError{Field: "username"}
	}
	if strings.TrimSpace(password) == "" {
		return nil, &ValidationError{Field: "password"}
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, &ValidationError{Field: "full name"}
	}

	// Check before insert so the caller gets a clean error instead of a
	// constraint violation wrap. The unique constraint stays as backstop.
	_, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrDuplicateUsername
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		ProfilePic:   profilePic,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("registered user", "id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate looks up a user by username and verifies the password.
// Returns ErrInvalidCredentials for unknown users and wrong passwords alike.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Do a dummy bcrypt comparison to maintain constant timing
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Debug("authenticated user", "id", user.ID, "username", user.Username)
	return user, nil
}

// GetByID resolves a persisted identifier back into a full user record.
// Used to restore a session at startup. Returns store.ErrNotFound when the
// identifier doesn't resolve to a live user.
func (s *Service) GetByID(ctx context.Context, id int64) (*store.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetByUsername looks up a user by exact username. Returns
// store.ErrNotFound when no such user exists.
func (s *Service) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	return s.store.GetUserByUsername(ctx, username)
}

// ListOthers returns every user except the given one, ordered by full
// display name ascending.
func (s *Service) ListOthers(ctx context.Context, excludingID int64) ([]*store.User, error) {
	return s.store.ListUsersExcept(ctx, excludingID)
}
