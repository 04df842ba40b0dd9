package converter

import (
	"hospital-appointment-server/internal/delivery/dto"
	"hospital-appointment-server/internal/domain/entity"
)

// DoctorToResponse flattens a doctor user and their profile for the directory.
func DoctorToResponse(doctor *entity.User) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	response := &dto.DoctorResponse{
		ID:       doctor.ID,
		FullName: doctor.FullName,
		Email:    doctor.Email,
	}

	if doctor.DoctorProfile != nil {
		response.Specialization = doctor.DoctorProfile.Specialization
		response.Biography = doctor.DoctorProfile.Biography
		response.ConsultationFee = doctor.DoctorProfile.ConsultationFee
	}

	return response
}

// DoctorsToResponses converts a slice of doctor users to response DTOs
func DoctorsToResponses(doctors []entity.User) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
