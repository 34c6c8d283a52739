package service

import (
	"fmt"
	"strings"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/internal/repository/contract"
)

type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchSubstring
	MatchExact
)

func (m MatchKind) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchSubstring:
		return "partial"
	default:
		return "none"
	}
}

const noneSpecified = "None specified"

type IPatientService interface {
	// FindByName prefers an exact (case and whitespace insensitive) match, then
	// containment in either direction, first in load order within each pass.
	FindByName(name string) (*entity.Patient, MatchKind)
	FormatSummary(p *entity.Patient) string
	ListPatients() []*dto.PatientListItem
	ExampleNames(n int) []string
}

type patientService struct {
	repo contract.PatientRepository
	log  logger.ILogger
}

func NewPatientService(repo contract.PatientRepository, log logger.ILogger) IPatientService {
	return &patientService{repo: repo, log: log}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (s *patientService) FindByName(name string) (*entity.Patient, MatchKind) {
	query := normalizeName(name)
	if query == "" {
		return nil, MatchNone
	}

	patients := s.repo.FindAll()
	for _, p := range patients {
		if normalizeName(p.PatientName) == query {
			s.log.Info("PATIENT_DB", "Found patient (exact match)", map[string]interface{}{"patient": p.PatientName})
			return p, MatchExact
		}
	}

	for _, p := range patients {
		candidate := normalizeName(p.PatientName)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, query) || strings.Contains(query, candidate) {
			s.log.Info("PATIENT_DB", "Found patient (partial match)", map[string]interface{}{"patient": p.PatientName})
			return p, MatchSubstring
		}
	}

	s.log.Info("PATIENT_DB", "No patient found for name", map[string]interface{}{"query": name})
	return nil, MatchNone
}

func orNoneSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return noneSpecified
	}
	return s
}

func (s *patientService) FormatSummary(p *entity.Patient) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Patient Name: %s\n", p.PatientName)
	fmt.Fprintf(&sb, "Discharge Date: %s\n", p.DischargeDate)
	fmt.Fprintf(&sb, "Primary Diagnosis: %s\n", p.PrimaryDiagnosis)
	fmt.Fprintf(&sb, "Medications: %s\n", strings.Join(p.Medications, ", "))
	fmt.Fprintf(&sb, "Dietary Restrictions: %s\n", orNoneSpecified(p.DietaryRestrictions))
	fmt.Fprintf(&sb, "Follow-up: %s\n", p.FollowUp)
	fmt.Fprintf(&sb, "Warning Signs: %s", orNoneSpecified(p.WarningSigns))
	return sb.String()
}

func (s *patientService) ListPatients() []*dto.PatientListItem {
	patients := s.repo.FindAll()
	items := make([]*dto.PatientListItem, 0, len(patients))
	for _, p := range patients {
		items = append(items, &dto.PatientListItem{
			Name:          p.PatientName,
			Diagnosis:     p.PrimaryDiagnosis,
			DischargeDate: p.DischargeDate,
		})
	}
	return items
}

func (s *patientService) ExampleNames(n int) []string {
	patients := s.repo.FindAll()
	if n < 0 {
		n = 0
	}
	if n > len(patients) {
		n = len(patients)
	}
	names := make([]string, 0, n)
	for _, p := range patients[:n] {
		names = append(names, p.PatientName)
	}
	return names
}
