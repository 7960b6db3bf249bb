package estimate

import (
	"strings"
)

// Three-tier keyword heuristic, the terminal fallback when no marker exists
// and the inference service is unavailable.
const (
	quickMinutes   = 10
	mediumMinutes  = 25
	longMinutes    = 45
	defaultMinutes = 30
)

var quickKeywords = []string{
	"check", "quick", "brief", "short", "email", "text", "call",
	"review", "confirm", "verify", "remind", "note", "list",
}

var mediumKeywords = []string{
	"read", "watch", "install", "setup", "configure", "update",
	"change", "cancel", "make", "create", "write",
}

var longKeywords = []string{
	"build", "develop", "implement", "research", "study", "learn",
	"clean", "organize", "project", "essay",
}

// heuristicMinutes estimates duration from task text keywords.
func heuristicMinutes(content, description string) int {
	text := strings.ToLower(content + " " + description)
	for _, kw := range quickKeywords {
		if strings.Contains(text, kw) {
			return quickMinutes
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(text, kw) {
			return mediumMinutes
		}
	}
	for _, kw := range longKeywords {
		if strings.Contains(text, kw) {
			return longMinutes
		}
	}
	return defaultMinutes
}
