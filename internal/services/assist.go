package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/umlchat/umlchat-backend/internal/data/convstore"
	"github.com/umlchat/umlchat-backend/internal/domain"
	"github.com/umlchat/umlchat-backend/internal/modules/assist/steps"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
)

// AssistService is the use-case surface behind the HTTP layer: one turn of the
// pipeline plus conversation management.
type AssistService interface {
	RespondTurn(ctx context.Context, in steps.RespondInput) (steps.RespondOutput, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	GetConversation(ctx context.Context, userID uuid.UUID, id string) (domain.Conversation, error)
	DeleteConversation(ctx context.Context, userID uuid.UUID, id string) error
}

type assistService struct {
	log   *logger.Logger
	deps  steps.RespondDeps
	store convstore.Store
}

func NewAssistService(log *logger.Logger, deps steps.RespondDeps, store convstore.Store) (AssistService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.AI == nil || deps.Retriever == nil || deps.Store == nil {
		return nil, fmt.Errorf("assist service: missing pipeline deps")
	}
	if store == nil {
		return nil, fmt.Errorf("conversation store required")
	}
	return &assistService{
		log:   log.With("service", "AssistService"),
		deps:  deps,
		store: store,
	}, nil
}

func (s *assistService) RespondTurn(ctx context.Context, in steps.RespondInput) (steps.RespondOutput, error) {
	return steps.Respond(ctx, s.deps, in)
}

func (s *assistService) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *assistService) GetConversation(ctx context.Context, userID uuid.UUID, id string) (domain.Conversation, error) {
	return s.store.GetByID(ctx, userID, id)
}

func (s *assistService) DeleteConversation(ctx context.Context, userID uuid.UUID, id string) error {
	return s.store.Delete(ctx, userID, id)
}
