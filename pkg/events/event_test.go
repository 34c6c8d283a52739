package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	e := New(TypeSessionReset, nil)
	assert.Equal(t, TypeSessionReset, e.EventType())
	assert.NotNil(t, e.Payload())
	assert.False(t, e.Timestamp().IsZero())
	assert.Equal(t, "events.SESSION_RESET", Subject(e.EventType()))
}
