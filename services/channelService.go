package services

import (
	"regexp"
	"strings"

	"policypath/models"
)

// The mentor smuggles structured metadata past the visible reply between
// these sentinels. The format is best-effort: the model's formatting is not
// contractually guaranteed, so parsing is tolerant and never fails.
const (
	vaultStartMarker = "||VAULT_START||"
	vaultEndMarker   = "||VAULT_END||"

	defaultTitle = "Constitutional Concept"
	defaultNotes = "Mastered via PolicyPath"
)

var (
	topicPattern    = regexp.MustCompile(`(?i)Topic:[ \t]*([^\n]*)`)
	summaryPattern  = regexp.MustCompile(`(?is)Summary:[ \t]*(.*)`)
	emphasisPattern = regexp.MustCompile("[*_`#]")
)

// ParsedReply separates the user-visible text of a mentor reply from the
// hidden payload, if one is present.
type ParsedReply struct {
	Visible string
	Hidden  *models.HiddenPayload
}

// ParseReply splits raw mentor output on the sentinel pair. Without a start
// marker the whole reply is visible. A missing end marker means the
// remainder after the start marker is the hidden segment. Missing labels
// fall back to defaults instead of failing.
func ParseReply(raw string) *ParsedReply {
	start := strings.Index(raw, vaultStartMarker)
	if start < 0 {
		return &ParsedReply{Visible: strings.TrimSpace(raw)}
	}

	visible := strings.TrimSpace(raw[:start])

	segment := raw[start+len(vaultStartMarker):]
	if end := strings.Index(segment, vaultEndMarker); end >= 0 {
		segment = segment[:end]
	}

	return &ParsedReply{
		Visible: visible,
		Hidden: &models.HiddenPayload{
			Title: extractLabel(topicPattern, segment, defaultTitle),
			Notes: extractLabel(summaryPattern, segment, defaultNotes),
		},
	}
}

func extractLabel(pattern *regexp.Regexp, segment, fallback string) string {
	match := pattern.FindStringSubmatch(segment)
	if match == nil {
		return fallback
	}

	value := strings.TrimSpace(stripEmphasis(match[1]))
	if value == "" {
		return fallback
	}
	return value
}

func stripEmphasis(s string) string {
	return emphasisPattern.ReplaceAllString(s, "")
}
