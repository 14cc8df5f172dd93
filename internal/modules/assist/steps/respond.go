package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/umlchat/umlchat-backend/internal/clients/openai"
	"github.com/umlchat/umlchat-backend/internal/data/convstore"
	"github.com/umlchat/umlchat-backend/internal/domain"
	"github.com/umlchat/umlchat-backend/internal/pkg/apperr"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
	"github.com/umlchat/umlchat-backend/internal/pkg/shortid"
	"github.com/umlchat/umlchat-backend/internal/retrieval"
)

type RespondDeps struct {
	Log       *logger.Logger
	AI        openai.Client
	Retriever retrieval.Retriever
	Store     convstore.Store
	Models    ModelConfig
}

type RespondInput struct {
	UserID uuid.UUID

	// ConversationID is empty for a new conversation; the orchestrator mints
	// a short id in that case.
	ConversationID string

	// Messages is the full transcript including the latest user turn.
	Messages []domain.Turn
}

type RespondOutput struct {
	ConversationID string
	Category       domain.Category
	Text           string
}

// Respond drives one turn end to end: classify and retrieve concurrently,
// generate, refine diagrams when the draft carries one, tag the response, and
// persist the grown transcript. The returned text is fully assembled and
// already persisted; nothing is surfaced to callers before the store write
// succeeds. A capability failure aborts the turn before anything is persisted.
func Respond(ctx context.Context, deps RespondDeps, in RespondInput) (RespondOutput, error) {
	out := RespondOutput{}
	if deps.Log == nil || deps.AI == nil || deps.Retriever == nil || deps.Store == nil {
		return out, fmt.Errorf("assist respond: missing deps")
	}
	if in.UserID == uuid.Nil {
		return out, fmt.Errorf("assist respond: missing user id: %w", apperr.ErrInvalidArgument)
	}
	if len(in.Messages) == 0 {
		return out, fmt.Errorf("assist respond: empty transcript: %w", apperr.ErrInvalidArgument)
	}

	input := in.Messages[len(in.Messages)-1].Content
	chatHistory := formatHistory(in.Messages)

	var (
		category  domain.Category
		fragments []retrieval.Fragment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		category, err = classifyRequest(gctx, deps.AI, deps.Models, chatHistory, input)
		return err
	})
	g.Go(func() error {
		var err error
		fragments, err = deps.Retriever.Retrieve(gctx, input)
		return err
	})
	if err := g.Wait(); err != nil {
		return out, err
	}

	contextText := formatFragments(fragments)

	var prompt string
	switch category {
	case domain.CategoryClarification:
		prompt = promptClarification(chatHistory, contextText, input)
	case domain.CategoryDiagram:
		prompt = promptDiagram(chatHistory, contextText, input)
	default:
		prompt = promptGeneral(chatHistory, contextText, input)
	}

	chatOpts := openai.Options{Model: deps.Models.ChatModel, Temperature: deps.Models.Temperature}

	var fullResponse string
	if category == domain.CategoryDiagram {
		draft, err := deps.AI.Complete(ctx, prompt, chatOpts)
		if err != nil {
			return out, err
		}
		refined, err := refineDiagram(ctx, deps.AI, deps.Models, refineInput{
			Draft:       draft,
			ChatHistory: chatHistory,
			Context:     contextText,
			Input:       input,
		})
		if err != nil {
			return out, err
		}
		if refined.Finalized {
			fullResponse = refined.Text + "\n\n![PlantUML Diagram](" + refined.ImageURL + ")"
		} else {
			deps.Log.Debug("diagram refinement fell back to draft",
				"conversation_id", in.ConversationID,
				"stage", string(refined.Stage),
			)
			fullResponse = draft
		}
	} else {
		text, err := deps.AI.CompleteStream(ctx, prompt, chatOpts, nil)
		if err != nil {
			return out, err
		}
		fullResponse = text
	}

	fullResponse += fmt.Sprintf("[Evaluation Response: %s]", category)

	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		conversationID = shortid.New()
	}
	createdAt := time.Now().UnixMilli()
	conv := domain.Conversation{
		ID:        conversationID,
		UserID:    in.UserID,
		Title:     domain.TitleFromFirstTurn(in.Messages[0].Content),
		CreatedAt: createdAt,
		Path:      "/chat/" + conversationID,
		Messages: append(append([]domain.Turn{}, in.Messages...), domain.Turn{
			Role:    domain.RoleAssistant,
			Content: fullResponse,
		}),
	}
	if err := deps.Store.Save(ctx, conv); err != nil {
		return out, err
	}

	deps.Log.Info("turn completed",
		"conversation_id", conversationID,
		"category", string(category),
		"fragments", len(fragments),
	)

	out.ConversationID = conversationID
	out.Category = category
	out.Text = fullResponse
	return out, nil
}

func formatHistory(messages []domain.Turn) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func formatFragments(fragments []retrieval.Fragment) string {
	if len(fragments) == 0 {
		return ""
	}
	texts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		texts = append(texts, f.Text)
	}
	return strings.Join(texts, "\n\n")
}
