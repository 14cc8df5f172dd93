package steps

import (
	"context"

	"github.com/umlchat/umlchat-backend/internal/clients/openai"
	"github.com/umlchat/umlchat-backend/internal/domain"
)

// classifyRequest routes the turn. The raw verdict is trimmed and lowercased;
// anything outside the known set lands on CategoryGeneral.
func classifyRequest(ctx context.Context, ai openai.Client, models ModelConfig, chatHistory string, input string) (domain.Category, error) {
	raw, err := ai.Complete(ctx, promptClassify(chatHistory, input), openai.Options{
		Model:       models.RouteModel,
		Temperature: models.Temperature,
	})
	if err != nil {
		return "", err
	}
	return domain.ParseCategory(raw), nil
}
