package plantuml

import "strings"

const (
	// StartMarker and EndMarker delimit a diagram description inside a
	// fenced code block.
	StartMarker = "@startuml"
	EndMarker   = "@enduml"

	fenceOpen  = "```plantuml"
	fenceClose = "```"
)

// Extract returns the diagram description carried by the first ```plantuml
// fenced block in text, which must contain a complete @startuml ... @enduml
// span. Only the first fence is inspected; a malformed first fence is a miss
// even when later fences hold a valid span. The returned value includes both
// markers and is whitespace-trimmed. Malformed input is a miss, never an
// error.
func Extract(text string) (string, bool) {
	open := strings.Index(text, fenceOpen)
	if open < 0 {
		return "", false
	}
	body := text[open+len(fenceOpen):]
	close := strings.Index(body, fenceClose)
	if close < 0 {
		return "", false
	}
	return extractSpan(body[:close])
}

func extractSpan(block string) (string, bool) {
	start := strings.Index(block, StartMarker)
	if start < 0 {
		return "", false
	}
	after := block[start+len(StartMarker):]
	end := strings.Index(after, EndMarker)
	if end < 0 {
		return "", false
	}
	span := StartMarker + after[:end] + EndMarker
	return strings.TrimSpace(span), true
}
