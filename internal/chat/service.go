// Package chat implements the core workflows: accounts, groups, friends,
// message posting, and agent-mention dispatch.
package chat

import (
	"go.uber.org/zap"

	"agentschat/internal/agent"
	"agentschat/internal/store"
	"agentschat/internal/uploads"
)

// Service owns the domain logic. It mutates the shared store and drives the
// agent dispatcher; the HTTP layer above it only translates errors.
type Service struct {
	store      *store.Store
	dispatcher *agent.Dispatcher
	uploads    *uploads.Store
	log        *zap.Logger
}

func NewService(st *store.Store, dispatcher *agent.Dispatcher, up *uploads.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:      st,
		dispatcher: dispatcher,
		uploads:    up,
		log:        log,
	}
}
