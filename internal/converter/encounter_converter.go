package converter

import (
	"hospital-appointment-server/internal/delivery/dto"
	"hospital-appointment-server/internal/domain/entity"
)

// EncounterToResponse converts an Encounter entity to EncounterResponse DTO
func EncounterToResponse(encounter *entity.Encounter) *dto.EncounterResponse {
	if encounter == nil {
		return nil
	}

	return &dto.EncounterResponse{
		ID:         encounter.ID,
		PatientID:  encounter.PatientID,
		DoctorID:   encounter.DoctorID,
		DoctorName: encounter.Doctor.FullName,
		OccurredAt: encounter.OccurredAt,
		Diagnosis:  encounter.Diagnosis,
		Treatment:  encounter.Treatment,
		CreatedAt:  encounter.CreatedAt,
	}
}

// EncountersToResponses converts a slice of Encounter entities to response DTOs
func EncountersToResponses(encounters []entity.Encounter) []dto.EncounterResponse {
	responses := make([]dto.EncounterResponse, len(encounters))
	for i := range encounters {
		responses[i] = *EncounterToResponse(&encounters[i])
	}
	return responses
}
