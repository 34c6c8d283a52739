package service

import (
	"context"
	"testing"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReceptionist(fake *scriptedLLM) IReceptionistService {
	return NewReceptionistService(newTestPatientService(), fake, logger.NewNopLogger())
}

func TestGreet(t *testing.T) {
	r := newTestReceptionist(&scriptedLLM{})
	assert.Equal(t, GreetingMessage, r.Greet())
	assert.Contains(t, r.Greet(), "May I have your full name please?")
}

func TestIdentifyDirectMatchSkipsLLM(t *testing.T) {
	fake := &scriptedLLM{}
	r := newTestReceptionist(fake)

	res := r.Identify(context.Background(), "john smith")
	require.True(t, res.Found)
	assert.Equal(t, "John Smith", res.Patient.PatientName)
	assert.Contains(t, res.Response, "Thank you, John Smith! I've found your discharge record.")
	assert.Contains(t, res.Response, "Primary Diagnosis: Chronic Kidney Disease Stage 3")
	assert.Contains(t, res.Response, "How are you feeling today?")
	assert.Zero(t, fake.callCount())
}

func TestIdentifyUsesExtractedName(t *testing.T) {
	fake := &scriptedLLM{replies: map[entity.AgentRole]string{entity.AgentReceptionist: " Sarah Johnson \n"}}
	r := newTestReceptionist(fake)

	res := r.Identify(context.Background(), "Hi there, it's me, the lady from ward 4")
	require.True(t, res.Found)
	assert.Equal(t, "Sarah Johnson", res.Patient.PatientName)
	require.Equal(t, 1, fake.callCount())
	assert.Equal(t, nameExtractionPrompt, fake.calls[0].System)
}

func TestIdentifyNotFound(t *testing.T) {
	tests := []struct {
		name string
		llm  *scriptedLLM
	}{
		{"sentinel", &scriptedLLM{replies: map[entity.AgentRole]string{entity.AgentReceptionist: "NO_NAME_FOUND"}}},
		{"unknown extracted name", &scriptedLLM{replies: map[entity.AgentRole]string{entity.AgentReceptionist: "Emily Davis"}}},
		{"llm down", &scriptedLLM{fail: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestReceptionist(tt.llm).Identify(context.Background(), "Emily Davis")
			assert.False(t, res.Found)
			assert.Nil(t, res.Patient)
			assert.Contains(t, res.Response, "I'm sorry, I couldn't find your record.")
			assert.Contains(t, res.Response, "- John Smith\n- Sarah Johnson\n- John Smithson")
		})
	}
}

func TestHandleGeneral(t *testing.T) {
	fake := &scriptedLLM{replies: map[entity.AgentRole]string{entity.AgentReceptionist: "We open at 9am."}}
	r := newTestReceptionist(fake)

	medical := r.HandleGeneral(context.Background(), "I have severe PAIN")
	assert.True(t, medical.RouteToClinical)
	assert.Equal(t, ClinicalTransitionMessage, medical.Response)
	assert.Zero(t, fake.callCount())

	general := r.HandleGeneral(context.Background(), "What time do you open?")
	assert.False(t, general.RouteToClinical)
	assert.Equal(t, "We open at 9am.", general.Response)
	require.Equal(t, 1, fake.callCount())
	assert.Equal(t, generalQueryPrompt, fake.calls[0].System)
}

func TestIsMedicalQuery(t *testing.T) {
	assert.True(t, IsMedicalQuery("any side effect from this?"))
	assert.True(t, IsMedicalQuery("Can I exercise?"))
	assert.False(t, IsMedicalQuery("thanks, bye"))
}
