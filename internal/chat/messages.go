package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agentschat/internal/agent"
	"agentschat/internal/models"
)

// Attachment is an uploaded file accompanying a message.
type Attachment struct {
	Filename string
	Data     []byte
}

// ListMessages returns the group's messages in creation order. Members only.
func (s *Service) ListMessages(ctx context.Context, actor *models.User, groupID string) ([]*models.Message, error) {
	exists, member := s.store.IsMember(groupID, actor.ID)
	if !exists {
		return nil, ErrNotFound
	}
	if !member {
		return nil, ErrForbidden
	}
	return s.store.MessagesForGroup(groupID), nil
}

// PostMessage persists an inbound message and fans it out to every group
// agent whose "@name" mention occurs in the content. The returned message is
// always the inbound one: agent callbacks are best-effort, and their
// failures never surface to the poster. Only the original content is
// scanned for mentions, so agent replies cannot trigger further fan-out.
func (s *Service) PostMessage(ctx context.Context, actor *models.User, groupID, content string, attachment *Attachment) (*models.Message, error) {
	exists, member := s.store.IsMember(groupID, actor.ID)
	if !exists {
		return nil, ErrNotFound
	}
	if !member {
		return nil, ErrForbidden
	}

	msgType := models.MessageText
	audioPath := ""
	if attachment != nil {
		msgType = models.MessageAudio
		path, err := s.uploads.Save(attachment.Data, attachment.Filename)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		audioPath = path
	}

	message := &models.Message{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Sender:    models.UserSender(actor.ID),
		Content:   content,
		Type:      msgType,
		AudioPath: audioPath,
		CreatedAt: time.Now().UTC(),
	}
	s.store.AddMessage(message)

	s.dispatchMentions(ctx, groupID, content)
	return message, nil
}

// dispatchMentions fires the agent callbacks for the posted content and
// records a reply message per successful call.
func (s *Service) dispatchMentions(ctx context.Context, groupID, content string) {
	var targets []agent.Target
	for _, a := range s.store.AgentsForGroup(groupID) {
		if strings.Contains(content, "@"+a.Name) {
			targets = append(targets, agent.Target{AgentID: a.ID, Name: a.Name, URL: a.APIURL})
		}
	}
	if len(targets) == 0 {
		return
	}

	// A disconnecting poster must not abort calls already in flight; the
	// only cancellation is the client's own timeout.
	replies := s.dispatcher.Dispatch(context.WithoutCancel(ctx), targets, content)
	for _, reply := range replies {
		s.store.AddMessage(&models.Message{
			ID:        uuid.NewString(),
			GroupID:   groupID,
			Sender:    models.AgentSender(reply.AgentID),
			Content:   reply.Body,
			Type:      models.MessageText,
			CreatedAt: time.Now().UTC(),
		})
	}
	s.log.Debug("agent dispatch settled",
		zap.String("group_id", groupID),
		zap.Int("targets", len(targets)),
		zap.Int("replies", len(replies)))
}
