package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"hospital-appointment-server/internal/converter"
	"hospital-appointment-server/internal/delivery/dto"
	"hospital-appointment-server/internal/delivery/http/middleware"
	"hospital-appointment-server/internal/domain/entity"
	"hospital-appointment-server/internal/domain/repository"
	"hospital-appointment-server/internal/service"
	"hospital-appointment-server/pkg/clock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrDoctorNotFound              = errors.New("doctor not found")
	ErrNotADoctor                  = errors.New("selected user is not a doctor")
	ErrMissingFields               = errors.New("date, time and reason are required")
	ErrPastSchedule                = errors.New("appointment cannot be scheduled in the past")
	ErrInvalidDateFormat           = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat           = errors.New("invalid time format, use HH:MM")
	ErrAppointmentNotEditable      = errors.New("only pending appointments can be edited")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrAppointmentNotCancellable   = errors.New("completed appointments cannot be cancelled")
	ErrAppointmentDeleteNotAllowed = errors.New("only completed or cancelled appointments can be deleted")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetDoctorAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	CancelAppointment(ctx context.Context, appointmentID uuid.UUID) error
	DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error
	ExportAppointments(ctx context.Context) (*dto.AppointmentReport, error)
	RefreshStatuses(ctx context.Context) error
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	clock           clock.Clock
	location        *time.Location
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	auditService    service.AuditService
	reportService   *service.ReportService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	clk clock.Clock,
	location *time.Location,
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	reportService *service.ReportService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		clock:           clk,
		location:        location,
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		auditService:    auditService,
		reportService:   reportService,
	}
}

// CreateAppointment books a new appointment for the logged-in patient.
//
// Flow:
// 1. Validate doctor reference, required fields and future scheduling
// 2. Insert with status=pending, patient taken from the token (never the body)
// 3. Audit inside the same transaction
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, date, err := u.validateBooking(tx, req.DoctorID, req.Date, req.Time, req.Reason)
	if err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		DoctorID:  doctor.ID,
		PatientID: patientID,
		Date:      date,
		Time:      req.Time,
		Reason:    strings.TrimSpace(req.Reason),
		Status:    entity.AppointmentStatusPending,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &patientID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment.Doctor = *doctor
	u.log.Infof("Appointment created: id=%s, doctor=%s, date=%s %s", appointment.ID, doctor.ID, req.Date, req.Time)
	return converter.AppointmentToResponse(appointment), nil
}

// UpdateAppointment edits doctor/date/time/reason while the appointment is
// still pending. The edit re-runs the full booking validation so a pending
// appointment can never be moved into the past.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindOwnedByID(tx, appointmentID, patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsPending() {
		return nil, ErrAppointmentNotEditable
	}

	doctor, date, err := u.validateBooking(tx, req.DoctorID, req.Date, req.Time, req.Reason)
	if err != nil {
		return nil, err
	}

	oldValue := converter.AppointmentToResponse(appointment)

	appointment.DoctorID = doctor.ID
	appointment.Date = date
	appointment.Time = req.Time
	appointment.Reason = strings.TrimSpace(req.Reason)

	if err := u.appointmentRepo.Update(tx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	newValue := converter.AppointmentToResponse(appointment)
	if err := u.auditService.LogUpdate(ctx, tx, &patientID, entity.AuditActionAppointmentUpdate, "appointment", appointment.ID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment.Doctor = *doctor
	return converter.AppointmentToResponse(appointment), nil
}

// GetAppointment returns a single appointment owned by the logged-in patient.
func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if err := u.RefreshStatuses(ctx); err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindOwnedByID(u.db.WithContext(ctx), appointmentID, patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

// GetMyAppointments lists the patient's appointments ordered by date and
// time, refreshing statuses first so no stale pending row is surfaced.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if err := u.RefreshStatuses(ctx); err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetDoctorAppointments lists appointments assigned to the logged-in doctor.
func (u *appointmentUsecase) GetDoctorAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if err := u.RefreshStatuses(ctx); err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// CancelAppointment withdraws a pending appointment. The transition is a
// conditional update keyed on id + patient + pending status; when no row is
// affected the current state decides which error the caller sees.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	db := u.db.WithContext(ctx)

	rows, err := u.appointmentRepo.CancelIfPending(db, appointmentID, patientID)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return err
	}

	if rows == 0 {
		appointment, err := u.appointmentRepo.FindOwnedByID(db, appointmentID, patientID)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if appointment.IsCancelled() {
			return ErrAppointmentAlreadyCancelled
		}
		return ErrAppointmentNotCancellable
	}

	if err := u.auditService.LogUpdate(ctx, db, &patientID, entity.AuditActionAppointmentCancel, "appointment", appointmentID.String(),
		entity.AppointmentStatusPending, entity.AppointmentStatusCancelled); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Appointment cancelled: id=%s", appointmentID)
	return nil
}

// DeleteAppointment removes a terminal appointment. Pending appointments
// must be cancelled first.
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindOwnedByID(tx, appointmentID, patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if !appointment.IsTerminal() {
		return ErrAppointmentDeleteNotAllowed
	}

	oldValue := converter.AppointmentToResponse(appointment)

	if err := u.appointmentRepo.Delete(tx, appointment); err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", appointmentID, err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, &patientID, entity.AuditActionAppointmentDelete, "appointment", appointmentID.String(), oldValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Appointment deleted: id=%s", appointmentID)
	return nil
}

// ExportAppointments renders the patient's appointment list as a PDF after
// refreshing statuses.
func (u *appointmentUsecase) ExportAppointments(ctx context.Context) (*dto.AppointmentReport, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if err := u.RefreshStatuses(ctx); err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)

	patient, err := u.userRepo.FindByID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrUserNotFound
	}

	appointments, err := u.appointmentRepo.FindByPatientID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patientID, err)
		return nil, err
	}

	content, err := u.reportService.Generate(patient, appointments)
	if err != nil {
		u.log.Warnf("Failed to render appointment report for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.AppointmentReport{
		Filename: u.reportService.Filename(patient),
		Content:  content,
	}, nil
}

// RefreshStatuses is the bulk sweep: every pending appointment whose
// scheduled instant has been reached is advanced to completed. Each
// transition is a conditional update so concurrent sweeps can never
// double-transition a row, and a failure on one row never blocks the rest.
func (u *appointmentUsecase) RefreshStatuses(ctx context.Context) error {
	db := u.db.WithContext(ctx)

	pending, err := u.appointmentRepo.FindByStatus(db, entity.AppointmentStatusPending)
	if err != nil {
		u.log.Warnf("Failed to scan pending appointments: %+v", err)
		return err
	}

	now := u.clock.Now()
	for i := range pending {
		appointment := &pending[i]

		scheduledAt, err := appointment.ScheduledAt(u.location)
		if err != nil {
			u.log.Warnf("Skipping appointment %s during status refresh: %+v", appointment.ID, err)
			continue
		}
		if scheduledAt.After(now) {
			continue
		}

		if _, err := u.appointmentRepo.CompleteIfPending(db, appointment.ID); err != nil {
			// Best-effort per record: report and keep sweeping.
			u.log.Warnf("Failed to complete appointment %s during status refresh: %+v", appointment.ID, err)
		}
	}

	return nil
}

// validateBooking applies the booking rules shared by create and edit:
// the referenced user must carry the doctor role, all fields must be
// present, and the combined date+time instant must be strictly in the
// future in the configured timezone.
func (u *appointmentUsecase) validateBooking(db *gorm.DB, doctorID uuid.UUID, dateStr, timeStr, reason string) (*entity.User, time.Time, error) {
	if strings.TrimSpace(dateStr) == "" || strings.TrimSpace(timeStr) == "" || strings.TrimSpace(reason) == "" {
		return nil, time.Time{}, ErrMissingFields
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, time.Time{}, ErrInvalidDateFormat
	}
	timeOfDay, err := time.Parse("15:04", timeStr)
	if err != nil {
		return nil, time.Time{}, ErrInvalidTimeFormat
	}

	doctor, err := u.userRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, time.Time{}, err
	}
	if doctor == nil {
		return nil, time.Time{}, ErrDoctorNotFound
	}
	if !doctor.IsDoctor() {
		return nil, time.Time{}, ErrNotADoctor
	}

	scheduledAt := time.Date(date.Year(), date.Month(), date.Day(), timeOfDay.Hour(), timeOfDay.Minute(), 0, 0, u.location)
	if !scheduledAt.After(u.clock.Now()) {
		return nil, time.Time{}, ErrPastSchedule
	}

	return doctor, date, nil
}
