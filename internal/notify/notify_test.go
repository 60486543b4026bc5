package notify

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, nil)

	Success(c, "booked %s", "intro call")
	c.Notify(Notification{Level: LevelError, Message: "zoom is not connected", Link: "https://app.example.com/integrations"})

	assert.Equal(t, "✓ booked intro call\n✗ zoom is not connected\n  https://app.example.com/integrations\n", buf.String())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	Info(&r, "loading")
	Error(&r, errors.New("boom"))

	got := r.All()
	assert.Equal(t, []Notification{
		{Level: LevelInfo, Message: "loading"},
		{Level: LevelError, Message: "boom"},
	}, got)
}
