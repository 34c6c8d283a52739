package entity

import "time"

type ChatStage string

const (
	StageGreeting     ChatStage = "greeting"
	StageAwaitingName ChatStage = "awaiting_name"
	StageConversation ChatStage = "conversation"
)

type AgentRole string

const (
	AgentReceptionist AgentRole = "receptionist"
	AgentClinical     AgentRole = "clinical"
	AgentSystem       AgentRole = "system"
)

// ChatSession is the per-conversation routing state.
// Once PatientIdentified is true, PatientData is set and never replaced.
type ChatSession struct {
	Id                string    `json:"-"`
	Stage             ChatStage `json:"stage"`
	PatientIdentified bool      `json:"patient_identified"`
	PatientData       *Patient  `json:"patient_data"`
	CurrentAgent      AgentRole `json:"current_agent"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewChatSession(id string, now time.Time) *ChatSession {
	return &ChatSession{
		Id:           id,
		Stage:        StageGreeting,
		CurrentAgent: AgentReceptionist,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *ChatSession) AwaitName(now time.Time) {
	s.Stage = StageAwaitingName
	s.UpdatedAt = now
}

// IdentifyPatient moves the session into conversation with the receptionist.
func (s *ChatSession) IdentifyPatient(p *Patient, now time.Time) {
	s.PatientIdentified = true
	s.PatientData = p
	s.Stage = StageConversation
	s.CurrentAgent = AgentReceptionist
	s.UpdatedAt = now
}

// HandOffToClinical is one-way; there is no transition back to the receptionist.
func (s *ChatSession) HandOffToClinical(now time.Time) {
	s.CurrentAgent = AgentClinical
	s.UpdatedAt = now
}
