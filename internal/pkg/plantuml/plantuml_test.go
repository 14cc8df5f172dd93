package plantuml

import (
	"strings"
	"testing"
)

func TestExtractFencedDiagram(t *testing.T) {
	text := "Here is the diagram you asked for.\n\n```plantuml\n@startuml\nAlice -> Bob: hello\n@enduml\n```\n\nLet me know if it helps."
	got, ok := Extract(text)
	if !ok {
		t.Fatalf("expected a diagram, got none")
	}
	want := "@startuml\nAlice -> Bob: hello\n@enduml"
	if got != want {
		t.Fatalf("extracted %q, want %q", got, want)
	}
}

func TestExtractFirstSpanWins(t *testing.T) {
	text := "```plantuml\n@startuml\nA -> B\n@enduml\n```\n\n```plantuml\n@startuml\nC -> D\n@enduml\n```"
	got, ok := Extract(text)
	if !ok {
		t.Fatalf("expected a diagram, got none")
	}
	if !strings.Contains(got, "A -> B") || strings.Contains(got, "C -> D") {
		t.Fatalf("expected the first span, got %q", got)
	}
}

func TestExtractIgnoresLaterFences(t *testing.T) {
	text := "```plantuml\nno markers here\n```\n```plantuml\n@startuml\nA -> B\n@enduml\n```"
	if got, ok := Extract(text); ok {
		t.Fatalf("malformed first fence must be a miss, got %q", got)
	}
}

func TestExtractMisses(t *testing.T) {
	cases := map[string]string{
		"no fence":          "@startuml\nA -> B\n@enduml",
		"unterminated span": "```plantuml\n@startuml\nA -> B\n```",
		"no start marker":   "```plantuml\nA -> B\n@enduml\n```",
		"unclosed fence":    "```plantuml\n@startuml\nA -> B\n@enduml",
		"plain prose":       "I need more detail before I can draw anything.",
		"empty":             "",
	}
	for name, text := range cases {
		if got, ok := Extract(text); ok {
			t.Fatalf("%s: expected no diagram, got %q", name, got)
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	text := "```plantuml\n@startuml\nAlice -> Bob\n@enduml\n```"
	first, ok := Extract(text)
	if !ok {
		t.Fatalf("expected a diagram")
	}
	second, ok := Extract("```plantuml\n" + first + "\n```")
	if !ok {
		t.Fatalf("rewrapped extraction missed")
	}
	if first != second {
		t.Fatalf("extraction not idempotent: %q vs %q", first, second)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	diagram := "@startuml\nAlice -> Bob: Authentication Request\n@enduml"
	a, err := Encode(diagram)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := Encode(diagram)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if a != b {
		t.Fatalf("same input produced %q and %q", a, b)
	}
	for _, r := range a {
		if !strings.ContainsRune(encodeAlphabet, r) {
			t.Fatalf("encoded output contains %q outside the alphabet", r)
		}
	}
}

func TestEncodeDistinctInputs(t *testing.T) {
	a, err := Encode("@startuml\nA -> B\n@enduml")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := Encode("@startuml\nA -> C\n@enduml")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if a == b {
		t.Fatalf("distinct diagrams encoded identically: %q", a)
	}
}

func TestImageURL(t *testing.T) {
	diagram := "@startuml\nA -> B\n@enduml"
	url, err := ImageURL(diagram)
	if err != nil {
		t.Fatalf("image url: %v", err)
	}
	encoded, err := Encode(diagram)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "http://www.plantuml.com/plantuml/img/" + encoded
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}
