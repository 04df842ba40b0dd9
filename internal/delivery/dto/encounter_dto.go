package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateEncounterRequest struct {
	PatientID  uuid.UUID `json:"patient_id" validate:"required"`
	OccurredAt string    `json:"occurred_at" validate:"required"`
	Diagnosis  string    `json:"diagnosis" validate:"required"`
	Treatment  string    `json:"treatment" validate:"required"`
}

// Response DTOs

type EncounterResponse struct {
	ID         uuid.UUID `json:"id"`
	PatientID  uuid.UUID `json:"patient_id"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	DoctorName string    `json:"doctor_name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Diagnosis  string    `json:"diagnosis"`
	Treatment  string    `json:"treatment"`
	CreatedAt  time.Time `json:"created_at"`
}

type EncounterListResponse struct {
	Encounters []EncounterResponse `json:"encounters"`
	Total      int                 `json:"total"`
}
