package repository

import (
	"hospital-appointment-server/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EncounterRepository interface {
	Create(db *gorm.DB, encounter *entity.Encounter) error
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Encounter, error)
}
