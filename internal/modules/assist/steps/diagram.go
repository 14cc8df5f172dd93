package steps

import (
	"context"
	"strings"

	"github.com/umlchat/umlchat-backend/internal/clients/openai"
	"github.com/umlchat/umlchat-backend/internal/pkg/plantuml"
)

type refineStage string

const (
	stageDrafted     refineStage = "drafted"
	stageHighlighted refineStage = "highlighted"
	stageVerified    refineStage = "verified"
	stageFinalized   refineStage = "finalized"
)

type refineInput struct {
	Draft       string
	ChatHistory string
	Context     string
	Input       string
}

// refineResult is the outcome of one refinement pass. When Finalized is false
// the caller keeps the draft untouched; Text and ImageURL are only meaningful
// on the finalized path.
type refineResult struct {
	Stage     refineStage
	Finalized bool
	Text      string
	ImageURL  string
}

// refineDiagram runs the draft through highlight, verification and final
// explanation. It advances forward only and runs at most once per turn. Any
// extraction miss ends the pass without error; the caller falls back to the
// draft silently. Model call failures propagate.
func refineDiagram(ctx context.Context, ai openai.Client, models ModelConfig, in refineInput) (refineResult, error) {
	out := refineResult{Stage: stageDrafted}

	if !strings.Contains(in.Draft, DiagramSectionMarker) {
		return out, nil
	}
	diagram, ok := plantuml.Extract(in.Draft)
	if !ok {
		return out, nil
	}

	routeOpts := openai.Options{Model: models.RouteModel, Temperature: models.Temperature}

	highlighted, err := ai.Complete(ctx, promptHighlight(diagram, in.ChatHistory, in.Input), routeOpts)
	if err != nil {
		return out, err
	}
	out.Stage = stageHighlighted

	verified, err := ai.Complete(ctx, promptVerification(highlighted, in.Input), routeOpts)
	if err != nil {
		return out, err
	}
	out.Stage = stageVerified

	verifiedDiagram, ok := plantuml.Extract(verified)
	if !ok {
		return out, nil
	}

	final, err := ai.CompleteStream(
		ctx,
		promptFinalAnswer(in.Context, in.ChatHistory, in.Input, verifiedDiagram),
		openai.Options{Model: models.ChatModel, Temperature: models.Temperature},
		nil,
	)
	if err != nil {
		return out, err
	}

	imageURL, err := plantuml.ImageURL(verifiedDiagram)
	if err != nil {
		return out, err
	}

	out.Stage = stageFinalized
	out.Finalized = true
	out.Text = final
	out.ImageURL = imageURL
	return out, nil
}
