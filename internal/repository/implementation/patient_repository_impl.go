package implementation

import (
	"encoding/json"
	"os"

	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/internal/repository/contract"
)

type JSONPatientRepositoryImpl struct {
	patients []*entity.Patient
}

// NewJSONPatientRepository loads the patient array once. A missing or corrupt
// file is logged and yields an empty directory.
func NewJSONPatientRepository(path string, log logger.ILogger) contract.PatientRepository {
	repo := &JSONPatientRepositoryImpl{patients: []*entity.Patient{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error("PATIENT_DB", "Patients file not found", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return repo
	}

	var patients []*entity.Patient
	if err := json.Unmarshal(raw, &patients); err != nil {
		log.Error("PATIENT_DB", "Error loading patients database", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return repo
	}

	for _, p := range patients {
		if p != nil {
			repo.patients = append(repo.patients, p)
		}
	}

	log.Info("PATIENT_DB", "Loaded patients from database", map[string]interface{}{
		"count": len(repo.patients),
	})
	return repo
}

func (r *JSONPatientRepositoryImpl) FindAll() []*entity.Patient {
	return r.patients
}
