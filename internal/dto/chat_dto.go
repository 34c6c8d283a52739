package dto

import "discharge-assistant-be/internal/entity"

type ChatMessageRequest struct {
	Message     string `json:"message" validate:"required,notblank,max=4000"`
	SessionId   string `json:"session_id" validate:"required,notblank,max=128"`
	PatientName string `json:"patient_name,omitempty" validate:"omitempty,max=200"`
}

// WsChatMessageRequest is a websocket frame; the session id comes from the URL.
type WsChatMessageRequest struct {
	Message     string `json:"message" validate:"required,notblank,max=4000"`
	PatientName string `json:"patient_name,omitempty" validate:"omitempty,max=200"`
}

type WebSourceDTO struct {
	Title string `json:"title"`
	Url   string `json:"url"`
}

type ChatSourcesDTO struct {
	Rag []string       `json:"rag"`
	Web []WebSourceDTO `json:"web"`
}

type ChatMessageResponse struct {
	Response    string           `json:"response"`
	Agent       entity.AgentRole `json:"agent"`
	PatientData *entity.Patient  `json:"patient_data"`
	Sources     *ChatSourcesDTO  `json:"sources"`
}

type ResetSessionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type GetSessionResponse struct {
	SessionId string              `json:"session_id"`
	Session   *entity.ChatSession `json:"session"`
}

type GreetingResponse struct {
	Greeting string `json:"greeting"`
}

type PatientListItem struct {
	Name          string `json:"name"`
	Diagnosis     string `json:"diagnosis"`
	DischargeDate string `json:"discharge_date"`
}

type ListPatientsResponse struct {
	Patients []*PatientListItem `json:"patients"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
