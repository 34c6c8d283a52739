package contract

import "discharge-assistant-be/internal/entity"

// PatientRepository exposes the directory in load order.
type PatientRepository interface {
	FindAll() []*entity.Patient
}
