package service

import (
	"context"
	"errors"
	"strings"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/pkg/llm"
	"discharge-assistant-be/pkg/outcome"
)

const (
	ReceptionistFallback = "I apologize, I'm having trouble processing your request right now. Please try again."
	ClinicalFallback     = "I apologize, I'm having trouble generating a medical response right now. Please consult your healthcare provider."
)

var errEmptyCompletion = errors.New("llm returned an empty completion")

type ILLMService interface {
	// Generate never returns an error; a failed call yields the role's fallback text as a degraded result.
	Generate(ctx context.Context, role entity.AgentRole, systemPrompt string, userMessage string, opts ...llm.Option) outcome.Result[string]
}

type roleProfile struct {
	model       string
	temperature float64
	maxTokens   int
	fallback    string
}

type llmService struct {
	provider llm.LLMProvider
	profiles map[entity.AgentRole]roleProfile
	log      logger.ILogger
}

func NewLLMService(provider llm.LLMProvider, receptionistModel, clinicalModel string, log logger.ILogger) ILLMService {
	log.Info("LLM", "LLMService initialized", map[string]interface{}{
		"receptionist_model": receptionistModel,
		"clinical_model":     clinicalModel,
	})
	return &llmService{
		provider: provider,
		profiles: map[entity.AgentRole]roleProfile{
			entity.AgentReceptionist: {model: receptionistModel, temperature: 0.7, maxTokens: 500, fallback: ReceptionistFallback},
			entity.AgentClinical:     {model: clinicalModel, temperature: 0.3, maxTokens: 1500, fallback: ClinicalFallback},
		},
		log: log,
	}
}

func (s *llmService) profile(role entity.AgentRole) (entity.AgentRole, roleProfile) {
	if p, ok := s.profiles[role]; ok {
		return role, p
	}
	return entity.AgentReceptionist, s.profiles[entity.AgentReceptionist]
}

func (s *llmService) Generate(ctx context.Context, role entity.AgentRole, systemPrompt string, userMessage string, opts ...llm.Option) outcome.Result[string] {
	role, p := s.profile(role)
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}
	return s.chat(ctx, role, p, messages, opts)
}

func (s *llmService) chat(ctx context.Context, role entity.AgentRole, p roleProfile, messages []llm.Message, opts []llm.Option) outcome.Result[string] {
	options := append([]llm.Option{
		llm.WithModel(p.model),
		llm.WithTemperature(p.temperature),
		llm.WithMaxTokens(p.maxTokens),
	}, opts...)

	out, err := s.provider.Chat(ctx, messages, options...)
	if err == nil && strings.TrimSpace(out) == "" {
		err = errEmptyCompletion
	}
	if err != nil {
		s.log.Error("LLM", "Error in LLM generation", map[string]interface{}{
			"role":  string(role),
			"model": p.model,
			"error": err.Error(),
		})
		return outcome.Degraded(p.fallback, err)
	}
	return outcome.OK(out)
}
