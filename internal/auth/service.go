package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"agentschat/internal/models"
	"agentschat/internal/store"
)

// ErrUnauthorized covers both an unknown token and a token whose user has
// since been deleted; the two are told apart only in the log.
var ErrUnauthorized = errors.New("unauthorized")

// Service issues and resolves opaque bearer tokens. Tokens never expire and
// are never revoked; a user may hold several live tokens at once.
type Service struct {
	store *store.Store
	log   *zap.Logger
}

func NewService(st *store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, log: log}
}

// IssueToken mints a fresh random token and records the token->user mapping.
func (s *Service) IssueToken(userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	s.store.SaveToken(token, userID)
	return token, nil
}

// Resolve maps a bearer token to its user.
func (s *Service) Resolve(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	userID, ok := s.store.UserIDForToken(token)
	if !ok {
		s.log.Debug("token not found", zap.String("reason", "invalid_token"))
		return nil, ErrUnauthorized
	}
	user, ok := s.store.UserByID(userID)
	if !ok {
		s.log.Debug("token maps to missing user",
			zap.String("reason", "invalid_user"),
			zap.String("user_id", userID))
		return nil, ErrUnauthorized
	}
	return user, nil
}

// HashPassword returns the hex sha256 digest used for credential checks.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
