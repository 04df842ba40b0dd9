package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Encounter is a medical-history record written by a doctor after seeing
// a patient.
type Encounter struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID  uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
	Diagnosis  string    `gorm:"type:text;not null" json:"diagnosis"`
	Treatment  string    `gorm:"type:text;not null" json:"treatment"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Patient User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Encounter) TableName() string {
	return "encounters"
}

func (e *Encounter) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
