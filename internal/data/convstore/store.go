package convstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/umlchat/umlchat-backend/internal/domain"
	"github.com/umlchat/umlchat-backend/internal/pkg/apperr"
	"github.com/umlchat/umlchat-backend/internal/pkg/ctxutil"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
)

// Store persists conversations in a keyed layout: one hash per conversation
// plus a per-user sorted index scored by creation time.
type Store interface {
	// Save writes the full conversation payload and indexes it for its owner.
	// Saving an existing ID overwrites the previous payload; last write wins.
	Save(ctx context.Context, conv domain.Conversation) error

	// GetByID returns apperr.ErrNotFound for unknown IDs and
	// apperr.ErrUnauthorized when the conversation belongs to someone else.
	GetByID(ctx context.Context, userID uuid.UUID, id string) (domain.Conversation, error)

	// ListByUser returns the user's conversations, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)

	Delete(ctx context.Context, userID uuid.UUID, id string) error
}

type store struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewStore(log *logger.Logger) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &store{
		log: log.With("service", "ConversationStore"),
		rdb: rdb,
	}, nil
}

func conversationKey(id string) string {
	return "chat:" + id
}

func userIndexKey(userID uuid.UUID) string {
	return "user:chat:" + userID.String()
}

func marshalConversation(conv domain.Conversation) (map[string]any, error) {
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}
	return map[string]any{
		"id":        conv.ID,
		"userId":    conv.UserID.String(),
		"title":     conv.Title,
		"createdAt": conv.CreatedAt,
		"path":      conv.Path,
		"messages":  string(messages),
	}, nil
}

func unmarshalConversation(fields map[string]string) (domain.Conversation, error) {
	userID, err := uuid.Parse(fields["userId"])
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("parse userId: %w", err)
	}
	var createdAt int64
	if raw := fields["createdAt"]; raw != "" {
		createdAt, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Conversation{}, fmt.Errorf("parse createdAt: %w", err)
		}
	}
	var messages []domain.Turn
	if raw := fields["messages"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &messages); err != nil {
			return domain.Conversation{}, fmt.Errorf("unmarshal messages: %w", err)
		}
	}
	return domain.Conversation{
		ID:        fields["id"],
		UserID:    userID,
		Title:     fields["title"],
		CreatedAt: createdAt,
		Path:      fields["path"],
		Messages:  messages,
	}, nil
}

func (s *store) Save(ctx context.Context, conv domain.Conversation) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("conversation store not initialized")
	}
	if strings.TrimSpace(conv.ID) == "" {
		return fmt.Errorf("conversation id required: %w", apperr.ErrInvalidArgument)
	}
	if conv.UserID == uuid.Nil {
		return fmt.Errorf("conversation owner required: %w", apperr.ErrInvalidArgument)
	}

	fields, err := marshalConversation(conv)
	if err != nil {
		return err
	}

	ctx = ctxutil.Default(ctx)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, conversationKey(conv.ID), fields)
	pipe.ZAdd(ctx, userIndexKey(conv.UserID), goredis.Z{
		Score:  float64(conv.CreatedAt),
		Member: conversationKey(conv.ID),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (s *store) GetByID(ctx context.Context, userID uuid.UUID, id string) (domain.Conversation, error) {
	if s == nil || s.rdb == nil {
		return domain.Conversation{}, fmt.Errorf("conversation store not initialized")
	}
	ctx = ctxutil.Default(ctx)

	fields, err := s.rdb.HGetAll(ctx, conversationKey(id)).Result()
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("load conversation: %w", err)
	}
	if len(fields) == 0 {
		return domain.Conversation{}, fmt.Errorf("conversation %q: %w", id, apperr.ErrNotFound)
	}
	conv, err := unmarshalConversation(fields)
	if err != nil {
		return domain.Conversation{}, err
	}
	if conv.UserID != userID {
		return domain.Conversation{}, fmt.Errorf("conversation %q: %w", id, apperr.ErrUnauthorized)
	}
	return conv, nil
}

func (s *store) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	if s == nil || s.rdb == nil {
		return nil, fmt.Errorf("conversation store not initialized")
	}
	ctx = ctxutil.Default(ctx)

	keys, err := s.rdb.ZRevRange(ctx, userIndexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load conversation index: %w", err)
	}
	out := make([]domain.Conversation, 0, len(keys))
	for _, key := range keys {
		fields, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("load conversation %q: %w", key, err)
		}
		// Index entries can outlive their hashes; skip the dangling ones.
		if len(fields) == 0 {
			continue
		}
		conv, err := unmarshalConversation(fields)
		if err != nil {
			s.log.Warn("skipping malformed conversation", "key", key, "error", err)
			continue
		}
		out = append(out, conv)
	}
	return out, nil
}

func (s *store) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("conversation store not initialized")
	}
	ctx = ctxutil.Default(ctx)

	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, conversationKey(id))
	pipe.ZRem(ctx, userIndexKey(userID), conversationKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
