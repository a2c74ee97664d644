package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"agentschat/internal/models"
)

// CreateGroup makes the actor owner and sole initial member.
func (s *Service) CreateGroup(ctx context.Context, actor *models.User, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("group name is required")
	}
	group := &models.Group{
		ID:      uuid.NewString(),
		Name:    name,
		OwnerID: actor.ID,
		Members: models.NewIDSet(actor.ID),
		Agents:  models.NewIDSet(),
	}
	s.store.AddGroup(group)
	return group, nil
}

// MyGroups lists the groups the actor belongs to, skipping dangling ids.
func (s *Service) MyGroups(ctx context.Context, actor *models.User) []*models.Group {
	return s.store.GroupsForUser(actor.ID)
}

// JoinGroup adds the actor to the group. Membership only grows; there is no
// leave operation.
func (s *Service) JoinGroup(ctx context.Context, actor *models.User, groupID string) error {
	if !s.store.AddGroupMember(groupID, actor.ID) {
		return ErrNotFound
	}
	return nil
}

// AddAgentToGroup attaches an agent to the group. Owner only.
func (s *Service) AddAgentToGroup(ctx context.Context, actor *models.User, groupID, agentID string) error {
	group, ok := s.store.GroupByID(groupID)
	if !ok {
		return ErrNotFound
	}
	if group.OwnerID != actor.ID {
		return ErrForbidden
	}
	if _, ok := s.store.AgentByID(agentID); !ok {
		return ErrNotFound
	}
	s.store.AttachAgent(groupID, agentID)
	return nil
}
