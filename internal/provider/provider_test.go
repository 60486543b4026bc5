package provider

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestHeuristic(buf *bytes.Buffer) *Heuristic {
	return NewHeuristic(slog.New(slog.NewTextHandler(buf, nil)))
}

func TestHeuristicClassify(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		calName  string
		metadata map[string]string
		want     Provider
	}{
		{"primary", "primary", "", nil, Google},
		{"gmail address", "jane@gmail.com", "Jane", nil, Google},
		{"google group calendar", "abc@group.calendar.google.com", "Team", nil, Google},
		{"outlook address", "jane@outlook.com", "", nil, Outlook},
		{"hotmail address", "jane@hotmail.co.uk", "", nil, Outlook},
		{"office365 in name", "cal-1", "Office365 shared", nil, Outlook},
		{"graph id", "AAMkAGI2TGuLAAA=", "", nil, Outlook},
		{"graph id AAQk", "AAQkADAwATM0MDAAMS1", "", nil, Outlook},
		{"consumer graph id", "AQMkADAwATM0MDAAMS1iNmFmLTQ4", "Calendar", nil, Outlook},
		{"long entry id", "AAGkAGAwATM0MDAAMS1iNmFm", "Calendar", nil, Outlook},
		{"address starting like an entry id", "aaguilar@gmail.com", "Aaron", nil, Google},
		{"graph id beats google name", "AAMkAGI2TGuLAAA=", "My Google calendar", nil, Outlook},
		{"outlook beats google", "jane@outlook.com", "imported from google", nil, Outlook},
		{"metadata outlook", "jane@gmail.com", "", map[string]string{"provider": "Microsoft"}, Outlook},
		{"metadata google", "AAMkAGI2TGuLAAA=", "", map[string]string{"provider": "GOOGLE"}, Google},
		{"unknown metadata ignored", "jane@hotmail.com", "", map[string]string{"provider": "caldav"}, Outlook},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got := newTestHeuristic(&buf).Classify(tt.id, tt.calName, tt.metadata)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, buf.String())
		})
	}
}

func TestHeuristicDefaultsToGoogle(t *testing.T) {
	var buf bytes.Buffer
	got := newTestHeuristic(&buf).Classify("x9q", "Holidays", nil)
	assert.Equal(t, Google, got)
	assert.Contains(t, buf.String(), "defaulting to google")
}

func TestGraphPrefixesAlwaysOutlook(t *testing.T) {
	names := []string{"", "google", "primary", "@gmail.com holidays"}
	for _, prefix := range graphIDPrefixes {
		for _, n := range names {
			got := NewHeuristic(nil).Classify(prefix+"XyZ123", n, nil)
			assert.Equal(t, Outlook, got, "prefix %s name %q", prefix, n)
		}
	}
}

func TestMetadataClassifier(t *testing.T) {
	var calls int
	fallback := ClassifierFunc(func(id, name string, md map[string]string) Provider {
		calls++
		return Outlook
	})
	c := Metadata{Fallback: fallback}

	assert.Equal(t, Google, c.Classify("x", "", map[string]string{"provider": "google"}))
	assert.Equal(t, 0, calls)
	assert.Equal(t, Outlook, c.Classify("x", "", nil))
	assert.Equal(t, 1, calls)
	assert.Equal(t, Google, Metadata{}.Classify("x", "", nil))
}
