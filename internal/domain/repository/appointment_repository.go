package repository

import (
	"hospital-appointment-server/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	Update(db *gorm.DB, appointment *entity.Appointment) error
	Delete(db *gorm.DB, appointment *entity.Appointment) error
	FindOwnedByID(db *gorm.DB, id uuid.UUID, patientID uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error)
	FindByStatus(db *gorm.DB, status entity.AppointmentStatus) ([]entity.Appointment, error)

	// CompleteIfPending transitions pending -> completed, conditioned on the
	// row still being pending at write time. Returns affected rows so a
	// concurrent duplicate sweep observes 0 and treats it as a no-op.
	CompleteIfPending(db *gorm.DB, id uuid.UUID) (int64, error)

	// CancelIfPending transitions pending -> cancelled for the given patient,
	// with the same compare-and-set semantics.
	CancelIfPending(db *gorm.DB, id uuid.UUID, patientID uuid.UUID) (int64, error)
}
