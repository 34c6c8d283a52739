package service

import (
	"context"
	"errors"
	"sync"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/pkg/events"
	"discharge-assistant-be/pkg/llm"
	"discharge-assistant-be/pkg/outcome"
)

type stubPatientRepo struct {
	patients []*entity.Patient
}

func (r *stubPatientRepo) FindAll() []*entity.Patient { return r.patients }

func testPatients() []*entity.Patient {
	return []*entity.Patient{
		{
			PatientName:         "John Smith",
			DischargeDate:       "2024-01-15",
			PrimaryDiagnosis:    "Chronic Kidney Disease Stage 3",
			Medications:         []string{"Lisinopril 10mg daily", "Furosemide 20mg twice daily"},
			DietaryRestrictions: "Low sodium (2g/day), fluid restriction (1.5L/day)",
			FollowUp:            "Nephrology clinic in 2 weeks",
			WarningSigns:        "Swelling, shortness of breath, decreased urine output",
		},
		{
			PatientName:      "Sarah Johnson",
			DischargeDate:    "2024-02-01",
			PrimaryDiagnosis: "Acute Kidney Injury",
			Medications:      []string{"Sodium bicarbonate 650mg"},
			FollowUp:         "Lab work in 1 week",
		},
		{
			PatientName:      "John Smithson",
			DischargeDate:    "2024-03-10",
			PrimaryDiagnosis: "Nephrotic Syndrome",
			Medications:      []string{"Prednisone 40mg"},
			FollowUp:         "Nephrology clinic in 1 month",
		},
	}
}

type llmCall struct {
	Role   entity.AgentRole
	System string
	User   string
}

// scriptedLLM answers with a fixed reply per role, or degrades when fail is set.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[entity.AgentRole]string
	fail    bool
	calls   []llmCall
}

func (f *scriptedLLM) Generate(ctx context.Context, role entity.AgentRole, systemPrompt string, userMessage string, opts ...llm.Option) outcome.Result[string] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, llmCall{Role: role, System: systemPrompt, User: userMessage})
	if f.fail {
		if role == entity.AgentClinical {
			return outcome.Degraded(ClinicalFallback, errors.New("llm down"))
		}
		return outcome.Degraded(ReceptionistFallback, errors.New("llm down"))
	}
	return outcome.OK(f.replies[role])
}

func (f *scriptedLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type stubDocs struct {
	results []entity.RetrievalResult
	calls   int
}

func (s *stubDocs) Search(ctx context.Context, query string, topK int) outcome.Result[[]entity.RetrievalResult] {
	s.calls++
	return outcome.OK(s.results)
}

type stubWeb struct {
	results []entity.WebResult
	calls   int
}

func (s *stubWeb) Search(ctx context.Context, query string) outcome.Result[[]entity.WebResult] {
	s.calls++
	return outcome.OK(s.results)
}

type recordedEvent struct {
	Type string
	Data map[string]interface{}
}

type recordingAudit struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (a *recordingAudit) Record(ctx context.Context, eventType string, data map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, recordedEvent{Type: eventType, Data: data})
}

func (a *recordingAudit) types() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

type capturePublisher struct {
	ch  chan events.Event
	err error
}

func (p *capturePublisher) Publish(ctx context.Context, event events.Event) error {
	p.ch <- event
	return p.err
}
