package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	// AppointmentStatusPending: created, scheduled instant not reached, not cancelled
	AppointmentStatusPending AppointmentStatus = "pending"
	// AppointmentStatusCompleted: scheduled instant passed while pending (automatic)
	AppointmentStatusCompleted AppointmentStatus = "completed"
	// AppointmentStatusCancelled: withdrawn by the patient, terminal, never automatic
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a booked consultation between a patient and a doctor.
// Date and Time are stored as separate columns and only ever compared through
// ScheduledAt, which combines them in the configured timezone.
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_doctor_schedule" json:"doctor_id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_patient_schedule" json:"patient_id"`
	Date      time.Time         `gorm:"type:date;not null;index:idx_appointments_patient_schedule;index:idx_appointments_doctor_schedule" json:"date"`
	Time      string            `gorm:"type:time;not null" json:"time"`
	Reason    string            `gorm:"type:text;not null" json:"reason"`
	Status    AppointmentStatus `gorm:"type:varchar(12);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ScheduledAt combines Date and Time into a single instant in loc.
// Postgres returns time columns with seconds, input uses HH:MM; both parse.
func (a *Appointment) ScheduledAt(loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04:05", a.Time)
	if err != nil {
		t, err = time.Parse("15:04", a.Time)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid appointment time %q: %w", a.Time, err)
		}
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// IsPending checks if the appointment is still pending
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsCompleted checks if the appointment has completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// IsCancelled checks if the appointment was cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsTerminal reports whether the appointment reached a final state.
// Only terminal appointments may be deleted.
func (a *Appointment) IsTerminal() bool {
	return a.IsCompleted() || a.IsCancelled()
}
