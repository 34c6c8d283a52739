package entity

// Patient is a discharge record loaded from the patient directory file.
type Patient struct {
	PatientName         string   `json:"patient_name"`
	DischargeDate       string   `json:"discharge_date"`
	PrimaryDiagnosis    string   `json:"primary_diagnosis"`
	Medications         []string `json:"medications"`
	DietaryRestrictions string   `json:"dietary_restrictions,omitempty"`
	FollowUp            string   `json:"follow_up"`
	WarningSigns        string   `json:"warning_signs,omitempty"`
}
