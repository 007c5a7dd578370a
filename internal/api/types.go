package api

import (
	"time"

	"github.com/Jonas-Sn/Trabalho-Final/internal/scheduling"
)

type RequestAppointmentRequest struct {
	PatientID  string `json:"patient_id"`
	Specialty  string `json:"specialty"`
	ProviderID string `json:"provider_id,omitempty"` // optional preferred provider
	Date       string `json:"date"`
	Time       string `json:"time"`
	VisitType  string `json:"visit_type,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type ScheduleAppointmentRequest struct {
	PatientID  string `json:"patient_id"`
	ProviderID string `json:"provider_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	VisitType  string `json:"visit_type,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type CompleteAppointmentRequest struct {
	Summary string `json:"summary"`
	Outcome string `json:"outcome"`
}

type AppointmentResponse struct {
	ID         int64     `json:"id"`
	PatientID  string    `json:"patient_id"`
	ProviderID string    `json:"provider_id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	VisitType  string    `json:"visit_type"`
	Specialty  string    `json:"specialty"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:         a.ID,
		PatientID:  a.PatientID,
		ProviderID: a.ProviderID,
		Date:       a.Date,
		Time:       a.Time,
		VisitType:  a.VisitType,
		Specialty:  a.Specialty,
		Status:     string(a.Status),
		Notes:      a.Notes,
		Summary:    a.Summary,
		Outcome:    a.Outcome,
		CreatedAt:  a.CreatedAt,
	}
}

type ListedAppointmentResponse struct {
	AppointmentResponse
	PatientName       string `json:"patient_name"`
	ProviderName      string `json:"provider_name"`
	PatientIDDisplay  string `json:"patient_id_display"`
	ProviderIDDisplay string `json:"provider_id_display"`
}

type VisitRecordResponse struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	VisitType    string `json:"visit_type"`
	ProviderName string `json:"provider_name"`
	Summary      string `json:"summary,omitempty"`
	Outcome      string `json:"outcome,omitempty"`
}

type AgendaEntryResponse struct {
	AppointmentResponse
	PatientName string                `json:"patient_name"`
	History     []VisitRecordResponse `json:"history"`
}

type AvailableSlotsResponse struct {
	ProviderID string   `json:"provider_id"`
	Date       string   `json:"date"`
	Times      []string `json:"times"`
}

type NotificationResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
