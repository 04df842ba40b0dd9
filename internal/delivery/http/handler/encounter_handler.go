package handler

import (
	"encoding/json"
	"net/http"

	"hospital-appointment-server/internal/delivery/dto"
	"hospital-appointment-server/internal/usecase"
	"hospital-appointment-server/pkg/response"
	"hospital-appointment-server/pkg/validator"
)

type EncounterHandler struct {
	encounterUsecase usecase.EncounterUsecase
	validator        *validator.CustomValidator
}

func NewEncounterHandler(encounterUsecase usecase.EncounterUsecase, validator *validator.CustomValidator) *EncounterHandler {
	return &EncounterHandler{
		encounterUsecase: encounterUsecase,
		validator:        validator,
	}
}

func (h *EncounterHandler) CreateEncounter(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEncounterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	encounter, err := h.encounterUsecase.CreateEncounter(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrEncounterNotAPatient:
			response.Error(w, http.StatusBadRequest, "Encounters can only be recorded for patients", nil)
		case usecase.ErrInvalidOccurredAt:
			response.Error(w, http.StatusBadRequest, "Invalid occurred_at, use RFC 3339", nil)
		default:
			response.InternalServerError(w, "Failed to create encounter")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Encounter recorded successfully", encounter)
}

func (h *EncounterHandler) GetMyMedicalHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.encounterUsecase.GetMyMedicalHistory(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get medical history")
		return
	}

	response.Success(w, http.StatusOK, "Medical history retrieved successfully", history)
}
