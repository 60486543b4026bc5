// Package provider infers which calendar system backs a calendar.
//
// The result only captions calendar pickers. The backend resolves the real
// provider from its own calendar record, so a wrong guess here must never
// block a request.
package provider

import (
	"log/slog"
	"strings"
)

// Provider is a calendar backing system.
type Provider string

const (
	Google  Provider = "google"
	Outlook Provider = "outlook"
)

// MetadataKey is the metadata entry that carries an explicit provider hint.
const MetadataKey = "provider"

// Classifier maps a calendar identifier and name to a Provider. It must
// never fail.
type Classifier interface {
	Classify(id, name string, metadata map[string]string) Provider
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(id, name string, metadata map[string]string) Provider

func (f ClassifierFunc) Classify(id, name string, metadata map[string]string) Provider {
	return f(id, name, metadata)
}

// Microsoft Graph calendar ids are base64 Exchange entry ids; these are the
// prefixes they start with once lower-cased. AQMk is the consumer account
// form, AAGkAGA the long-form entry id.
var graphIDPrefixes = []string{"aamk", "aqmk", "aaqk", "aagkaga"}

var outlookMarkers = []string{
	"@outlook.",
	"@hotmail.",
	"@live.",
	"@msn.",
	"outlook",
	"microsoft",
	"office365",
	"exchange",
	"graph.microsoft",
	"office.com",
}

var googleMarkers = []string{
	"@gmail.",
	"@googlemail.",
	"google",
	"calendar.google",
}

// Heuristic classifies by substring rules. Unknown input falls back to
// Google and is logged.
type Heuristic struct {
	logger *slog.Logger
}

// NewHeuristic returns the substring classifier. A nil logger uses slog.Default.
func NewHeuristic(logger *slog.Logger) *Heuristic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Heuristic{logger: logger}
}

// Classify applies, in order: the metadata hint, Graph id prefixes, Outlook
// markers, Google markers, then the Google default.
func (h *Heuristic) Classify(id, name string, metadata map[string]string) Provider {
	if p, ok := FromMetadata(metadata); ok {
		return p
	}

	lowerID := strings.ToLower(strings.TrimSpace(id))
	for _, prefix := range graphIDPrefixes {
		if strings.HasPrefix(lowerID, prefix) {
			return Outlook
		}
	}

	search := lowerID + " " + strings.ToLower(strings.TrimSpace(name))
	if containsAny(search, outlookMarkers) {
		return Outlook
	}
	if lowerID == "primary" || containsAny(search, googleMarkers) {
		return Google
	}

	h.logger.Warn("Could not infer calendar provider, defaulting to google", "id", id, "name", name)
	return Google
}

// FromMetadata reads an explicit provider hint.
func FromMetadata(metadata map[string]string) (Provider, bool) {
	hint := strings.ToLower(metadata[MetadataKey])
	switch {
	case hint == "":
		return "", false
	case strings.Contains(hint, "outlook"), strings.Contains(hint, "microsoft"):
		return Outlook, true
	case strings.Contains(hint, "google"):
		return Google, true
	}
	return "", false
}

// Metadata trusts explicit metadata and delegates everything else.
type Metadata struct {
	Fallback Classifier
}

func (m Metadata) Classify(id, name string, metadata map[string]string) Provider {
	if p, ok := FromMetadata(metadata); ok {
		return p
	}
	if m.Fallback == nil {
		return Google
	}
	return m.Fallback.Classify(id, name, metadata)
}

// Label is the human caption for a provider.
func (p Provider) Label() string {
	switch p {
	case Outlook:
		return "Outlook Calendar"
	default:
		return "Google Calendar"
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
