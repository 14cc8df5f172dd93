package steps

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/umlchat/umlchat-backend/internal/clients/openai"
	"github.com/umlchat/umlchat-backend/internal/domain"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
	"github.com/umlchat/umlchat-backend/internal/retrieval"
)

const testDiagram = "@startuml\nclass Cart\nclass Item\nCart o-- Item\n@enduml"

// scriptedAI routes each prompt to a canned reply by recognizing the template
// it was rendered from.
type scriptedAI struct {
	t *testing.T

	classify  string
	draft     string
	highlight string
	verify    string
	final     string
	general   string

	failOn string

	calls []string
}

func (s *scriptedAI) reply(prompt string) (string, error) {
	var kind, reply string
	switch {
	case strings.Contains(prompt, "classify the type of the user request"):
		kind, reply = "classify", s.classify
	case strings.Contains(prompt, "crafting detailed and accurate PlantUML diagrams"):
		kind, reply = "draft", s.draft
	case strings.Contains(prompt, "highlight new additions or modifications in green"):
		kind, reply = "highlight", s.highlight
	case strings.Contains(prompt, "validating and ensuring the accuracy"):
		kind, reply = "verify", s.verify
	case strings.Contains(prompt, "providing detailed explanations and contextual information"):
		kind, reply = "final", s.final
	case strings.Contains(prompt, "general inquiries"):
		kind, reply = "general", s.general
	case strings.Contains(prompt, "provide clarification to the user"):
		kind, reply = "clarification", s.general
	default:
		s.t.Fatalf("unrecognized prompt:\n%s", prompt)
	}
	s.calls = append(s.calls, kind)
	if s.failOn != "" && s.failOn == kind {
		return "", fmt.Errorf("upstream failure on %s", kind)
	}
	return reply, nil
}

func (s *scriptedAI) Complete(ctx context.Context, prompt string, opts openai.Options) (string, error) {
	return s.reply(prompt)
}

func (s *scriptedAI) CompleteStream(ctx context.Context, prompt string, opts openai.Options, onDelta func(string)) (string, error) {
	text, err := s.reply(prompt)
	if err != nil {
		return "", err
	}
	if onDelta != nil {
		onDelta(text)
	}
	return text, nil
}

func (s *scriptedAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return nil, fmt.Errorf("not used")
}

type stubRetriever struct {
	fragments []retrieval.Fragment
	err       error
}

func (r *stubRetriever) Retrieve(ctx context.Context, query string) ([]retrieval.Fragment, error) {
	return r.fragments, r.err
}

type capturingStore struct {
	saved []domain.Conversation
	err   error
}

func (s *capturingStore) Save(ctx context.Context, conv domain.Conversation) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, conv)
	return nil
}

func (s *capturingStore) GetByID(ctx context.Context, userID uuid.UUID, id string) (domain.Conversation, error) {
	return domain.Conversation{}, fmt.Errorf("not used")
}

func (s *capturingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	return nil, fmt.Errorf("not used")
}

func (s *capturingStore) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	return fmt.Errorf("not used")
}

func newTestDeps(t *testing.T, ai *scriptedAI, ret retrieval.Retriever, store *capturingStore) RespondDeps {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() { log.Sync() })
	return RespondDeps{
		Log:       log,
		AI:        ai,
		Retriever: ret,
		Store:     store,
		Models:    ModelConfig{ChatModel: "gpt-4-turbo", RouteModel: "gpt-4o", Temperature: 0.7},
	}
}

func userTurn(content string) []domain.Turn {
	return []domain.Turn{{Role: domain.RoleUser, Content: content}}
}

func TestRespondDiagramFullRefinement(t *testing.T) {
	ai := &scriptedAI{
		t:         t,
		classify:  "diagram",
		draft:     "Here is the model.\n\nPlantUML code:\n```plantuml\n" + testDiagram + "\n```",
		highlight: testDiagram,
		verify:    "```plantuml\n" + testDiagram + "\n```",
		final:     "The cart aggregates items.\n\nPlantUML code:\n```plantuml\n" + testDiagram + "\n```",
	}
	store := &capturingStore{}
	deps := newTestDeps(t, ai, &stubRetriever{fragments: []retrieval.Fragment{{ID: "f1", Text: "Aggregation uses o--."}}}, store)

	out, err := Respond(context.Background(), deps, RespondInput{
		UserID:   uuid.New(),
		Messages: userTurn("draw a class diagram for a shopping cart"),
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if out.Category != domain.CategoryDiagram {
		t.Fatalf("category: want=diagram got=%s", out.Category)
	}
	if !strings.Contains(out.Text, "The cart aggregates items.") {
		t.Fatalf("final explanation missing: %q", out.Text)
	}
	if !strings.Contains(out.Text, testDiagram) {
		t.Fatalf("verbatim diagram block missing")
	}
	if !strings.Contains(out.Text, "![PlantUML Diagram](http://www.plantuml.com/plantuml/img/") {
		t.Fatalf("image reference missing: %q", out.Text)
	}
	if !strings.HasSuffix(out.Text, "[Evaluation Response: diagram]") {
		t.Fatalf("category suffix missing: %q", out.Text)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saves: want=1 got=%d", len(store.saved))
	}
	conv := store.saved[0]
	if len(conv.Messages) != 2 || conv.Messages[1].Role != domain.RoleAssistant {
		t.Fatalf("transcript shape: %+v", conv.Messages)
	}
	if conv.Messages[1].Content != out.Text {
		t.Fatalf("persisted text differs from response")
	}
	if conv.Path != "/chat/"+conv.ID {
		t.Fatalf("path: got %q for id %q", conv.Path, conv.ID)
	}
	if conv.Title != "draw a class diagram for a shopping cart" {
		t.Fatalf("title: got %q", conv.Title)
	}

	wantOrder := []string{"highlight", "verify", "final"}
	var refineCalls []string
	for _, c := range ai.calls {
		if c == "highlight" || c == "verify" || c == "final" {
			refineCalls = append(refineCalls, c)
		}
	}
	if strings.Join(refineCalls, ",") != strings.Join(wantOrder, ",") {
		t.Fatalf("refinement order: want=%v got=%v", wantOrder, refineCalls)
	}
}

func TestRespondDiagramDraftWithoutMarker(t *testing.T) {
	ai := &scriptedAI{
		t:        t,
		classify: "diagram",
		draft:    "I can sketch that, but tell me which entities matter most.",
	}
	store := &capturingStore{}
	deps := newTestDeps(t, ai, &stubRetriever{}, store)

	out, err := Respond(context.Background(), deps, RespondInput{
		UserID:   uuid.New(),
		Messages: userTurn("draw a class diagram for a shopping cart"),
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	want := ai.draft + "[Evaluation Response: diagram]"
	if out.Text != want {
		t.Fatalf("response: want=%q got=%q", want, out.Text)
	}
	for _, c := range ai.calls {
		if c == "highlight" || c == "verify" || c == "final" {
			t.Fatalf("refinement stage %q should not run without the marker", c)
		}
	}
	if len(store.saved) != 1 {
		t.Fatalf("fallback turn should still persist")
	}
}

func TestRespondGeneral(t *testing.T) {
	ai := &scriptedAI{
		t:        t,
		classify: "general",
		general:  "Aggregation is a whole-part relationship where parts can outlive the whole.",
	}
	store := &capturingStore{}
	deps := newTestDeps(t, ai, &stubRetriever{}, store)

	out, err := Respond(context.Background(), deps, RespondInput{
		UserID:   uuid.New(),
		Messages: userTurn("what does aggregation mean?"),
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	want := ai.general + "[Evaluation Response: general]"
	if out.Text != want {
		t.Fatalf("response: want=%q got=%q", want, out.Text)
	}
	for _, c := range ai.calls {
		if c == "draft" || c == "highlight" || c == "verify" || c == "final" {
			t.Fatalf("diagram stage %q should not run for general turns", c)
		}
	}
}

func TestRespondVerificationOutputUnusable(t *testing.T) {
	ai := &scriptedAI{
		t:         t,
		classify:  "diagram",
		draft:     "PlantUML code:\n```plantuml\n" + testDiagram + "\n```",
		highlight: testDiagram,
		verify:    "```plantuml\n@startuml\nclass Cart\n```",
	}
	store := &capturingStore{}
	deps := newTestDeps(t, ai, &stubRetriever{}, store)

	out, err := Respond(context.Background(), deps, RespondInput{
		UserID:   uuid.New(),
		Messages: userTurn("draw a class diagram for a shopping cart"),
	})
	if err != nil {
		t.Fatalf("extraction miss must not surface an error, got %v", err)
	}

	if strings.Contains(out.Text, "![PlantUML Diagram]") {
		t.Fatalf("no image reference expected after verification miss")
	}
	want := ai.draft + "[Evaluation Response: diagram]"
	if out.Text != want {
		t.Fatalf("fallback response: want=%q got=%q", want, out.Text)
	}
	for _, c := range ai.calls {
		if c == "final" {
			t.Fatalf("finalize must not run after a verification extraction miss")
		}
	}
}

func TestRespondUnrecognizedVerdictFallsToGeneral(t *testing.T) {
	ai := &scriptedAI{
		t:        t,
		classify: "diagram, probably",
		general:  "Happy to help.",
	}
	store := &capturingStore{}
	deps := newTestDeps(t, ai, &stubRetriever{}, store)

	out, err := Respond(context.Background(), deps, RespondInput{
		UserID:   uuid.New(),
		Messages: userTurn("hello"),
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if out.Category != domain.CategoryGeneral {
		t.Fatalf("category: want=general got=%s", out.Category)
	}
	if !strings.HasSuffix(out.Text, "[Evaluation Response: general]") {
		t.Fatalf("suffix should name the effective category: %q", out.Text)
	}
}

func TestRespondCapabilityFailureSkipsPersist(t *testing.T) {
	ai := &scriptedAI{t: t, classify: "general", general: "x", failOn: "classify"}
	store := &capturingStore{}
	deps := newTestDeps(t, ai, &stubRetriever{}, store)

	_, err := Respond(context.Background(), deps, RespondInput{
		UserID:   uuid.New(),
		Messages: userTurn("hello"),
	})
	if err == nil {
		t.Fatalf("expected classifier failure to propagate")
	}
	if len(store.saved) != 0 {
		t.Fatalf("failed turn must not persist")
	}
}

func TestRespondStoreFailureSurfacesError(t *testing.T) {
	ai := &scriptedAI{t: t, classify: "general", general: "streamed answer"}
	store := &capturingStore{err: fmt.Errorf("redis down")}
	deps := newTestDeps(t, ai, &stubRetriever{}, store)

	out, err := Respond(context.Background(), deps, RespondInput{
		UserID:   uuid.New(),
		Messages: userTurn("hello"),
	})
	if err == nil {
		t.Fatalf("expected store failure to propagate")
	}
	if out.Text != "" || out.ConversationID != "" {
		t.Fatalf("no response may surface when the write fails, got %+v", out)
	}
	if len(store.saved) != 0 {
		t.Fatalf("failed write must not record a conversation")
	}
}

func TestRespondRetrievalFailurePropagates(t *testing.T) {
	ai := &scriptedAI{t: t, classify: "general", general: "x"}
	store := &capturingStore{}
	deps := newTestDeps(t, ai, &stubRetriever{err: fmt.Errorf("index unreachable")}, store)

	_, err := Respond(context.Background(), deps, RespondInput{
		UserID:   uuid.New(),
		Messages: userTurn("hello"),
	})
	if err == nil {
		t.Fatalf("expected retrieval failure to propagate")
	}
	if len(store.saved) != 0 {
		t.Fatalf("failed turn must not persist")
	}
}

func TestRespondReusesConversationID(t *testing.T) {
	ai := &scriptedAI{t: t, classify: "general", general: "Sure."}
	store := &capturingStore{}
	deps := newTestDeps(t, ai, &stubRetriever{}, store)

	out, err := Respond(context.Background(), deps, RespondInput{
		UserID:         uuid.New(),
		ConversationID: "abc1234",
		Messages: []domain.Turn{
			{Role: domain.RoleUser, Content: "first question"},
			{Role: domain.RoleAssistant, Content: "first answer[Evaluation Response: general]"},
			{Role: domain.RoleUser, Content: "second question"},
		},
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if out.ConversationID != "abc1234" {
		t.Fatalf("conversation id: want=abc1234 got=%s", out.ConversationID)
	}
	conv := store.saved[0]
	if conv.ID != "abc1234" || len(conv.Messages) != 4 {
		t.Fatalf("persisted transcript: id=%s len=%d", conv.ID, len(conv.Messages))
	}
	if conv.Title != "first question" {
		t.Fatalf("title should come from the opening turn, got %q", conv.Title)
	}
}

func TestRespondRejectsEmptyTranscript(t *testing.T) {
	ai := &scriptedAI{t: t}
	deps := newTestDeps(t, ai, &stubRetriever{}, &capturingStore{})
	if _, err := Respond(context.Background(), deps, RespondInput{UserID: uuid.New()}); err == nil {
		t.Fatalf("expected error for empty transcript")
	}
}
