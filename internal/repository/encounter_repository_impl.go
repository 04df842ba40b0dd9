package repository

import (
	"hospital-appointment-server/internal/domain/entity"
	domainRepo "hospital-appointment-server/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type encounterRepository struct{}

func NewEncounterRepository() domainRepo.EncounterRepository {
	return &encounterRepository{}
}

func (r *encounterRepository) Create(db *gorm.DB, encounter *entity.Encounter) error {
	return db.Create(encounter).Error
}

func (r *encounterRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Encounter, error) {
	var encounters []entity.Encounter
	err := db.Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("occurred_at DESC").
		Find(&encounters).Error
	if err != nil {
		return nil, err
	}
	return encounters, nil
}
