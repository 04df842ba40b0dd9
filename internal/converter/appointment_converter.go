package converter

import (
	"hospital-appointment-server/internal/delivery/dto"
	"hospital-appointment-server/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:          appointment.ID,
		DoctorID:    appointment.DoctorID,
		DoctorName:  appointment.Doctor.FullName,
		PatientID:   appointment.PatientID,
		PatientName: appointment.Patient.FullName,
		Date:        appointment.Date.Format("2006-01-02"),
		Time:        formatTimeOfDay(appointment.Time),
		Reason:      appointment.Reason,
		Status:      string(appointment.Status),
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to response DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// formatTimeOfDay trims database time values (HH:MM:SS) down to HH:MM.
func formatTimeOfDay(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}
