// Package telemetry scrubs user supplied text before it reaches logs or span attributes.
package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// PIILevel controls how much of a transcript may be written to telemetry.
type PIILevel string

const (
	// PIILevelNone replaces all user content with a placeholder.
	PIILevelNone PIILevel = "none"
	// PIILevelHashed keeps the text but swaps detected identifiers for salted hashes.
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull logs content unchanged.
	PIILevelFull PIILevel = "full"
)

const redacted = "[REDACTED]"

// ParseLevel maps a configuration value to a PIILevel, defaulting to hashed.
func ParseLevel(raw string) PIILevel {
	switch PIILevel(strings.ToLower(strings.TrimSpace(raw))) {
	case PIILevelNone:
		return PIILevelNone
	case PIILevelFull:
		return PIILevelFull
	default:
		return PIILevelHashed
	}
}

type rule struct {
	label   string
	pattern *regexp.Regexp
	hashed  bool
}

// Sanitizer rewrites questions, answers and user ids according to a PIILevel.
type Sanitizer struct {
	level PIILevel
	salt  string
	rules []rule
}

// NewSanitizer builds a sanitizer. The salt keeps hashes stable per deployment.
func NewSanitizer(level PIILevel, salt string) *Sanitizer {
	// Order matters: the narrower SSN and card patterns run before the phone pattern.
	return &Sanitizer{
		level: level,
		salt:  salt,
		rules: []rule{
			{label: "EMAIL", pattern: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), hashed: true},
			{label: "SSN", pattern: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
			{label: "CC", pattern: regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)},
			{label: "PHONE", pattern: regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`), hashed: true},
			{label: "IP", pattern: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), hashed: true},
		},
	}
}

// Level returns the configured level.
func (s *Sanitizer) Level() PIILevel {
	return s.level
}

// Text sanitizes free text such as a question or a model answer.
func (s *Sanitizer) Text(input string) string {
	switch s.level {
	case PIILevelFull:
		return input
	case PIILevelNone:
		return redacted
	default:
		return s.scrub(input)
	}
}

// UserID sanitizes a user identifier. Hashed mode returns a short salted digest.
func (s *Sanitizer) UserID(userID string) string {
	if userID == "" {
		return ""
	}
	switch s.level {
	case PIILevelFull:
		return userID
	case PIILevelNone:
		return redacted
	default:
		return s.digest(userID)
	}
}

func (s *Sanitizer) scrub(input string) string {
	out := input
	for _, r := range s.rules {
		r := r
		out = r.pattern.ReplaceAllStringFunc(out, func(match string) string {
			if !r.hashed {
				return "[" + r.label + ":REDACTED]"
			}
			return "[" + r.label + ":" + s.digest(match) + "]"
		})
	}
	return out
}

func (s *Sanitizer) digest(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}
