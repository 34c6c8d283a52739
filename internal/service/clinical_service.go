package service

import (
	"context"
	"fmt"
	"strings"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/pkg/events"
	"discharge-assistant-be/pkg/outcome"
)

const (
	MedicalDisclaimer = "\n\n**Disclaimer:** This information is for educational purposes only. " +
		"Always consult your healthcare provider for medical advice specific to your situation."

	clinicalPromptHeader = "You are a clinical medical AI assistant specializing in post-discharge care.\n\n" +
		"Use the provided context to answer the patient's question accurately and professionally.\n\n" +
		"IMPORTANT:\n" +
		"- Always cite sources when using information from the reference material or web\n" +
		"- Format citations as [Source: Reference Book, Page X] or [Source: Web]\n" +
		"- Prioritize patient safety - recommend consulting healthcare providers for serious concerns\n" +
		"- Be empathetic and clear in your explanations\n" +
		"- If information is not in the context, say so clearly\n\n"

	ragExcerptRunes = 500
	webSummaryRunes = 300
)

var webSearchKeywords = []string{"latest", "recent", "new", "current", "2024", "2025", "research"}

type DocumentSearcher interface {
	Search(ctx context.Context, query string, topK int) outcome.Result[[]entity.RetrievalResult]
}

type WebSearcher interface {
	Search(ctx context.Context, query string) outcome.Result[[]entity.WebResult]
}

type ClinicalAnswer struct {
	Response string
	Sources  dto.ChatSourcesDTO
}

type IClinicalService interface {
	Answer(ctx context.Context, query string, patient *entity.Patient) ClinicalAnswer
}

type clinicalService struct {
	documents DocumentSearcher
	web       WebSearcher
	llm       ILLMService
	audit     IAuditService
	topK      int
	log       logger.ILogger
}

func NewClinicalService(documents DocumentSearcher, web WebSearcher, llmService ILLMService, audit IAuditService, topK int, log logger.ILogger) IClinicalService {
	log.Info("CLINICAL", "Clinical Agent initialized", nil)
	return &clinicalService{
		documents: documents,
		web:       web,
		llm:       llmService,
		audit:     audit,
		topK:      topK,
		log:       log,
	}
}

// NeedsWebSearch reports whether the query asks for recent information.
func NeedsWebSearch(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range webSearchKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (s *clinicalService) Answer(ctx context.Context, query string, patient *entity.Patient) ClinicalAnswer {
	patientName := ""
	if patient != nil {
		patientName = patient.PatientName
	}
	s.log.Info("CLINICAL", "Handling medical query", map[string]interface{}{"patient": patientName})

	docs := s.documents.Search(ctx, query, s.topK).Value

	var web []entity.WebResult
	if NeedsWebSearch(query) {
		web = s.web.Search(ctx, query).Value
	}

	systemPrompt := clinicalPromptHeader + BuildClinicalContext(patient, docs, web)
	res := s.llm.Generate(ctx, entity.AgentClinical, systemPrompt, "Patient Question: "+query)

	answer := ClinicalAnswer{
		Response: res.Value + MedicalDisclaimer,
		Sources: dto.ChatSourcesDTO{
			Rag: make([]string, 0, len(docs)),
			Web: make([]dto.WebSourceDTO, 0, len(web)),
		},
	}
	for _, d := range docs {
		answer.Sources.Rag = append(answer.Sources.Rag, fmt.Sprintf("Chunk %d", d.ChunkIndex))
	}
	for _, w := range web {
		answer.Sources.Web = append(answer.Sources.Web, dto.WebSourceDTO{Title: w.Title, Url: w.Url})
	}

	s.log.Info("CLINICAL", "Clinical interaction logged", map[string]interface{}{"patient": patientName})
	s.audit.Record(ctx, events.TypeClinicalInteraction, map[string]interface{}{
		"patient_name":   patientName,
		"query_length":   len(query),
		"rag_sources":    len(answer.Sources.Rag),
		"web_sources":    len(answer.Sources.Web),
		"llm_degraded":   res.Degraded(),
		"response_chars": len(answer.Response),
	})

	return answer
}

// BuildClinicalContext renders patient facts followed by any reference and web excerpts.
func BuildClinicalContext(patient *entity.Patient, docs []entity.RetrievalResult, web []entity.WebResult) string {
	parts := make([]string, 0, 2+2*len(docs)+3*len(web)+2)

	if patient != nil {
		parts = append(parts, fmt.Sprintf("Patient Information:\n- Name: %s\n- Diagnosis: %s\n- Medications: %s\n- Dietary Restrictions: %s\n",
			patient.PatientName,
			patient.PrimaryDiagnosis,
			strings.Join(patient.Medications, ", "),
			orNoneSpecified(patient.DietaryRestrictions),
		))
	}

	if len(docs) > 0 {
		parts = append(parts, "\n**Medical Reference Information:**")
		for i, d := range docs {
			parts = append(parts, fmt.Sprintf("\n[Source %d - Chunk %d]", i+1, d.ChunkIndex))
			parts = append(parts, truncateRunes(d.Content, ragExcerptRunes))
		}
	}

	if len(web) > 0 {
		parts = append(parts, "\n**Recent Web Information:**")
		for i, w := range web {
			parts = append(parts, fmt.Sprintf("\n[Web Source %d]", i+1))
			parts = append(parts, "Title: "+w.Title)
			parts = append(parts, "Summary: "+truncateRunes(w.Snippet, webSummaryRunes))
		}
	}

	return strings.Join(parts, "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
