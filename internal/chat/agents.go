package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"agentschat/internal/models"
)

// CreateAgent registers an external agent callback. Admin only. There is no
// update operation; agents are created whole or deleted.
func (s *Service) CreateAgent(ctx context.Context, actor *models.User, name, description, apiURL string) (*models.Agent, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("agent name is required")
	}
	agent := &models.Agent{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		APIURL:      apiURL,
	}
	s.store.AddAgent(agent)
	return agent, nil
}

// ListAgents returns every registered agent. Any authenticated user may
// browse the roster.
func (s *Service) ListAgents(ctx context.Context) []*models.Agent {
	return s.store.Agents()
}

// DeleteAgent removes the agent record. Admin only. Groups referencing the
// agent keep the dangling id; fan-out skips it.
func (s *Service) DeleteAgent(ctx context.Context, actor *models.User, agentID string) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}
	if !s.store.DeleteAgent(agentID) {
		return ErrNotFound
	}
	return nil
}
