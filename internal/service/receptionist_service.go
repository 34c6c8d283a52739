package service

import (
	"context"
	"fmt"
	"strings"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/pkg/llm"
)

const (
	GreetingMessage = "Hello! Welcome to the Post-Discharge Medical Assistant. \n\n" +
		"I'm here to help you with any questions about your discharge instructions and recovery.\n\n" +
		"May I have your full name please?"

	ClinicalTransitionMessage = "Let me connect you with our clinical specialist who can better answer your medical question..."

	noNameSentinel = "NO_NAME_FOUND"

	nameExtractionPrompt = "You are a receptionist. Extract the patient name from the message.\n" +
		"If you can extract a name, respond with just the name.\n" +
		"If no name is found, respond with 'NO_NAME_FOUND'."

	generalQueryPrompt = "You are a friendly receptionist at a medical facility.\n" +
		"Respond warmly and professionally to general queries.\n" +
		"For medical questions, indicate that the patient should speak with a clinical specialist.\n" +
		"Keep responses brief and conversational."

	exampleNameCount = 4
)

var medicalKeywords = []string{
	"pain", "medication", "symptom", "doctor", "treatment",
	"side effect", "dosage", "kidney", "blood", "pressure",
	"swelling", "diet", "exercise", "headache", "nausea",
}

type IdentifyResult struct {
	Found    bool
	Response string
	Patient  *entity.Patient
}

type GeneralResult struct {
	RouteToClinical bool
	Response        string
}

type IReceptionistService interface {
	Greet() string
	Identify(ctx context.Context, message string) IdentifyResult
	HandleGeneral(ctx context.Context, message string) GeneralResult
}

type receptionistService struct {
	patients IPatientService
	llm      ILLMService
	log      logger.ILogger
}

func NewReceptionistService(patients IPatientService, llmService ILLMService, log logger.ILogger) IReceptionistService {
	log.Info("RECEPTIONIST", "Receptionist Agent initialized", nil)
	return &receptionistService{patients: patients, llm: llmService, log: log}
}

func (s *receptionistService) Greet() string {
	return GreetingMessage
}

func (s *receptionistService) Identify(ctx context.Context, message string) IdentifyResult {
	s.log.Info("RECEPTIONIST", "Processing patient name", map[string]interface{}{"message_length": len(message)})

	if p, kind := s.patients.FindByName(message); kind != MatchNone {
		return s.found(p)
	}

	extracted := s.llm.Generate(ctx, entity.AgentReceptionist, nameExtractionPrompt, message, llm.WithTemperature(0))
	name := strings.Trim(strings.TrimSpace(extracted.Value), `'"`)
	if !extracted.Degraded() && name != "" && !strings.Contains(name, noNameSentinel) {
		if p, kind := s.patients.FindByName(name); kind != MatchNone {
			return s.found(p)
		}
	}

	return IdentifyResult{Found: false, Response: s.notFoundMessage()}
}

func (s *receptionistService) found(p *entity.Patient) IdentifyResult {
	response := fmt.Sprintf("Thank you, %s! I've found your discharge record.\n\n%s\n\n"+
		"How are you feeling today? Do you have any questions about your discharge instructions or recovery?",
		p.PatientName, s.patients.FormatSummary(p))
	return IdentifyResult{Found: true, Response: response, Patient: p}
}

func (s *receptionistService) notFoundMessage() string {
	var sb strings.Builder
	sb.WriteString("I'm sorry, I couldn't find your record. Could you please provide your full name as it appears on your discharge papers?")
	names := s.patients.ExampleNames(exampleNameCount)
	if len(names) > 0 {
		sb.WriteString("\n\nHere are some test patients you can try:")
		for _, n := range names {
			sb.WriteString("\n- ")
			sb.WriteString(n)
		}
	}
	return sb.String()
}

// IsMedicalQuery reports whether message mentions any term from the medical lexicon.
func IsMedicalQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range medicalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (s *receptionistService) HandleGeneral(ctx context.Context, message string) GeneralResult {
	if IsMedicalQuery(message) {
		return GeneralResult{RouteToClinical: true, Response: ClinicalTransitionMessage}
	}

	res := s.llm.Generate(ctx, entity.AgentReceptionist, generalQueryPrompt, message)
	return GeneralResult{RouteToClinical: false, Response: res.Value}
}
