package domain

import "strings"

// Category is the router's verdict on how a turn should be answered.
type Category string

const (
	CategoryClarification Category = "clarification"
	CategoryDiagram       Category = "diagram"
	CategoryGeneral       Category = "general"
)

// ParseCategory maps a raw router verdict onto a known Category. The match is
// exact after trimming whitespace; anything else, including case variants,
// collapses to CategoryGeneral.
func ParseCategory(raw string) Category {
	switch Category(strings.TrimSpace(raw)) {
	case CategoryClarification:
		return CategoryClarification
	case CategoryDiagram:
		return CategoryDiagram
	case CategoryGeneral:
		return CategoryGeneral
	default:
		return CategoryGeneral
	}
}
