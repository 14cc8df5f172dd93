package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/umlchat/umlchat-backend/internal/pkg/ctxutil"
	"github.com/umlchat/umlchat-backend/internal/pkg/envutil"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
)

// Options selects the model for a single call. Temperature applies as-is;
// callers own the value.
type Options struct {
	Model       string
	Temperature float32
}

// Client is the language-model capability used by the rest of the backend.
type Client interface {
	// Complete sends one rendered prompt and returns the full completion text.
	Complete(ctx context.Context, prompt string, opts Options) (string, error)

	// CompleteStream streams completion deltas through onDelta and returns the
	// accumulated text. onDelta may be nil.
	CompleteStream(ctx context.Context, prompt string, opts Options, onDelta func(delta string)) (string, error)

	// Embed returns one embedding per input, in input order.
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// CallError carries the upstream status of a failed model call.
type CallError struct {
	Operation  string
	StatusCode int
	Cause      error
}

func (e *CallError) Error() string {
	if e == nil {
		return "openai call failed"
	}
	return fmt.Sprintf("openai call failed (op=%s status=%d): %v", e.Operation, e.StatusCode, e.Cause)
}

func (e *CallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *CallError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type client struct {
	log        *logger.Logger
	api        *goopenai.Client
	embedModel string
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		api:        goopenai.NewClientWithConfig(cfg),
		embedModel: envutil.String("OPENAI_EMBED_MODEL", string(goopenai.SmallEmbedding3)),
	}, nil
}

func (c *client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	const op = "complete"
	resp, err := c.api.CreateChatCompletion(ctxutil.Default(ctx), goopenai.ChatCompletionRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrapAPIError(op, err)
	}
	if len(resp.Choices) == 0 {
		return "", &CallError{Operation: op, Cause: fmt.Errorf("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *client) CompleteStream(ctx context.Context, prompt string, opts Options, onDelta func(delta string)) (string, error) {
	const op = "complete_stream"
	stream, err := c.api.CreateChatCompletionStream(ctxutil.Default(ctx), goopenai.ChatCompletionRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Stream:      true,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrapAPIError(op, err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", wrapAPIError(op, recvErr)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return full.String(), nil
}

func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	const op = "embed"
	if len(inputs) == 0 {
		return nil, nil
	}
	resp, err := c.api.CreateEmbeddings(ctxutil.Default(ctx), goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(c.embedModel),
		Input: inputs,
	})
	if err != nil {
		return nil, wrapAPIError(op, err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, &CallError{
			Operation: op,
			Cause:     fmt.Errorf("embedding count mismatch: want=%d got=%d", len(inputs), len(resp.Data)),
		}
	}
	out := make([][]float32, len(inputs))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, &CallError{
				Operation: op,
				Cause:     fmt.Errorf("embedding index out of range: %d", item.Index),
			}
		}
		out[item.Index] = item.Embedding
	}
	return out, nil
}

func wrapAPIError(op string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &CallError{Operation: op, StatusCode: apiErr.HTTPStatusCode, Cause: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &CallError{Operation: op, StatusCode: reqErr.HTTPStatusCode, Cause: err}
	}
	return &CallError{Operation: op, Cause: err}
}
