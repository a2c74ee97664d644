package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agentschat/internal/auth"
	"agentschat/internal/models"
	"agentschat/internal/store"
)

// Register creates a user with the supplied credentials.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: auth.HashPassword(password),
		Friends:      models.NewIDSet(),
		Groups:       models.NewIDSet(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.AddUser(user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login validates credentials and returns the user profile.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	user, ok := s.store.UserByUsername(username)
	if !ok || user.PasswordHash != auth.HashPassword(password) {
		return nil, errors.New("invalid credentials")
	}
	return user, nil
}

// ListUsers returns every user. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return s.store.Users(), nil
}

// DeleteUser removes the user record. Admin only. Messages and membership
// entries referencing the id are deliberately left behind.
func (s *Service) DeleteUser(ctx context.Context, actor *models.User, userID string) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}
	if !s.store.DeleteUser(userID) {
		return ErrNotFound
	}
	return nil
}

// AddFriend records the friend in the actor's friend set. The friend must
// exist at call time; nothing re-validates the entry later.
func (s *Service) AddFriend(ctx context.Context, actor *models.User, friendID string) error {
	if _, ok := s.store.UserByID(friendID); !ok {
		return ErrNotFound
	}
	s.store.AddFriend(actor.ID, friendID)
	return nil
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
// Without it no account can ever hold the admin flag.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	if existing, ok := s.store.UserByUsername(username); ok {
		if !existing.IsAdmin {
			return fmt.Errorf("user %q exists but is not an admin", username)
		}
		return nil
	}
	admin := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: auth.HashPassword(password),
		IsAdmin:      true,
		Friends:      models.NewIDSet(),
		Groups:       models.NewIDSet(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.AddUser(admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.log.Info("seeded admin user", zap.String("username", username))
	return nil
}
