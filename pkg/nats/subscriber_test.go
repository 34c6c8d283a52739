package nats

import (
	"encoding/json"
	"testing"
	"time"

	"discharge-assistant-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(events.BaseEvent{
		Type:       events.TypeClinicalInteraction,
		Data:       map[string]interface{}{"patient_name": "John Smith", "rag_sources": 3},
		OccurredAt: at,
	})
	require.NoError(t, err)

	event, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, events.TypeClinicalInteraction, event.EventType())
	assert.Equal(t, "John Smith", event.Payload()["patient_name"])
	assert.True(t, at.Equal(event.Timestamp()))
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := DecodeEnvelope([]byte("{not json"))
	assert.Error(t, err)

	event, err := DecodeEnvelope([]byte(`{"type":"SESSION_RESET"}`))
	require.NoError(t, err)
	assert.NotNil(t, event.Payload())
}
