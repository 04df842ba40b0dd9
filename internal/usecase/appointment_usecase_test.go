package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"hospital-appointment-server/internal/delivery/dto"
	"hospital-appointment-server/internal/delivery/http/middleware"
	"hospital-appointment-server/internal/domain/entity"
	"hospital-appointment-server/internal/repository"
	"hospital-appointment-server/internal/service"
	"hospital-appointment-server/pkg/clock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// All scheduling assertions are made against this fixed instant.
var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

type appointmentFixture struct {
	db        *gorm.DB
	usecase   AppointmentUsecase
	doctorID  uuid.UUID
	patientID uuid.UUID
}

func setupAppointmentTest(t *testing.T) *appointmentFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Minimal schema for the booking logic (sqlite-friendly).
	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			role_id INTEGER NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			full_name TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE doctor_profiles (
			user_id TEXT PRIMARY KEY,
			specialization TEXT NOT NULL,
			biography TEXT,
			consultation_fee NUMERIC NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE appointments (
			id TEXT PRIMARY KEY,
			doctor_id TEXT NOT NULL,
			patient_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			time TEXT NOT NULL,
			reason TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE audit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT,
			action TEXT NOT NULL,
			metadata TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	doctorID := uuid.New()
	patientID := uuid.New()

	if err := db.Create(&entity.User{
		ID:       doctorID,
		RoleID:   entity.RoleIDDoctor,
		Email:    "doctor@example.com",
		Password: "x",
		FullName: "Dr. Gomez",
	}).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	if err := db.Create(&entity.User{
		ID:       patientID,
		RoleID:   entity.RoleIDPatient,
		Email:    "patient@example.com",
		Password: "x",
		FullName: "Maria Lopez",
	}).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	log := logrus.New()
	fixed := clock.Fixed{Instant: testNow}
	auditLogRepo := repository.NewAuditLogRepository()
	auditService := service.NewAuditService(log, auditLogRepo)
	reportService := service.NewReportService(fixed, time.UTC)

	uc := NewAppointmentUsecase(
		db,
		log,
		fixed,
		time.UTC,
		repository.NewAppointmentRepository(),
		repository.NewUserRepository(),
		auditService,
		reportService,
	)

	return &appointmentFixture{
		db:        db,
		usecase:   uc,
		doctorID:  doctorID,
		patientID: patientID,
	}
}

func (f *appointmentFixture) ctx() context.Context {
	return context.WithValue(context.Background(), middleware.UserIDKey, f.patientID)
}

func (f *appointmentFixture) seedAppointment(t *testing.T, date time.Time, timeOfDay string, status entity.AppointmentStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if err := f.db.Create(&entity.Appointment{
		ID:        id,
		DoctorID:  f.doctorID,
		PatientID: f.patientID,
		Date:      date,
		Time:      timeOfDay,
		Reason:    "checkup",
		Status:    status,
	}).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return id
}

func (f *appointmentFixture) appointmentStatus(t *testing.T, id uuid.UUID) entity.AppointmentStatus {
	t.Helper()
	var appointment entity.Appointment
	if err := f.db.First(&appointment, "id = ?", id).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	return appointment.Status
}

func TestCreateAppointment_Success(t *testing.T) {
	f := setupAppointmentTest(t)

	resp, err := f.usecase.CreateAppointment(f.ctx(), &dto.CreateAppointmentRequest{
		DoctorID: f.doctorID,
		Date:     "2026-02-11",
		Time:     "10:00",
		Reason:   "annual checkup",
	})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	if resp.Status != string(entity.AppointmentStatusPending) {
		t.Errorf("status = %q, want pending", resp.Status)
	}
	if resp.DoctorName != "Dr. Gomez" {
		t.Errorf("doctor name = %q, want Dr. Gomez", resp.DoctorName)
	}
	if resp.Date != "2026-02-11" || resp.Time != "10:00" {
		t.Errorf("schedule = %s %s, want 2026-02-11 10:00", resp.Date, resp.Time)
	}

	var auditCount int64
	if err := f.db.Model(&entity.AuditLog{}).Where("action = ?", entity.AuditActionAppointmentCreate).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit logs: %v", err)
	}
	if auditCount != 1 {
		t.Errorf("audit log count = %d, want 1", auditCount)
	}
}

func TestCreateAppointment_ValidationErrors(t *testing.T) {
	f := setupAppointmentTest(t)

	cases := []struct {
		name string
		req  dto.CreateAppointmentRequest
		want error
	}{
		{
			name: "unknown doctor",
			req:  dto.CreateAppointmentRequest{DoctorID: uuid.New(), Date: "2026-02-11", Time: "10:00", Reason: "checkup"},
			want: ErrDoctorNotFound,
		},
		{
			name: "referenced user is a patient",
			req:  dto.CreateAppointmentRequest{DoctorID: f.patientID, Date: "2026-02-11", Time: "10:00", Reason: "checkup"},
			want: ErrNotADoctor,
		},
		{
			name: "blank reason",
			req:  dto.CreateAppointmentRequest{DoctorID: f.doctorID, Date: "2026-02-11", Time: "10:00", Reason: "   "},
			want: ErrMissingFields,
		},
		{
			name: "blank date",
			req:  dto.CreateAppointmentRequest{DoctorID: f.doctorID, Date: "", Time: "10:00", Reason: "checkup"},
			want: ErrMissingFields,
		},
		{
			name: "malformed date",
			req:  dto.CreateAppointmentRequest{DoctorID: f.doctorID, Date: "11/02/2026", Time: "10:00", Reason: "checkup"},
			want: ErrInvalidDateFormat,
		},
		{
			name: "malformed time",
			req:  dto.CreateAppointmentRequest{DoctorID: f.doctorID, Date: "2026-02-11", Time: "10am", Reason: "checkup"},
			want: ErrInvalidTimeFormat,
		},
		{
			name: "yesterday",
			req:  dto.CreateAppointmentRequest{DoctorID: f.doctorID, Date: "2026-02-09", Time: "10:00", Reason: "checkup"},
			want: ErrPastSchedule,
		},
		{
			name: "exactly now",
			req:  dto.CreateAppointmentRequest{DoctorID: f.doctorID, Date: "2026-02-10", Time: "12:00", Reason: "checkup"},
			want: ErrPastSchedule,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.usecase.CreateAppointment(f.ctx(), &tc.req)
			if err != tc.want {
				t.Fatalf("CreateAppointment error = %v, want %v", err, tc.want)
			}
		})
	}

	var count int64
	if err := f.db.Model(&entity.Appointment{}).Count(&count).Error; err != nil {
		t.Fatalf("count appointments: %v", err)
	}
	if count != 0 {
		t.Errorf("appointment count = %d, want 0 after rejected bookings", count)
	}
}

func TestUpdateAppointment_PendingOnly(t *testing.T) {
	f := setupAppointmentTest(t)

	pendingID := f.seedAppointment(t, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusPending)
	completedID := f.seedAppointment(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusCompleted)

	resp, err := f.usecase.UpdateAppointment(f.ctx(), pendingID, &dto.UpdateAppointmentRequest{
		DoctorID: f.doctorID,
		Date:     "2026-02-14",
		Time:     "16:30",
		Reason:   "moved",
	})
	if err != nil {
		t.Fatalf("UpdateAppointment: %v", err)
	}
	if resp.Date != "2026-02-14" || resp.Time != "16:30" || resp.Reason != "moved" {
		t.Errorf("updated appointment = %s %s %q", resp.Date, resp.Time, resp.Reason)
	}

	if _, err := f.usecase.UpdateAppointment(f.ctx(), completedID, &dto.UpdateAppointmentRequest{
		DoctorID: f.doctorID,
		Date:     "2026-02-14",
		Time:     "16:30",
		Reason:   "moved",
	}); err != ErrAppointmentNotEditable {
		t.Fatalf("update completed error = %v, want %v", err, ErrAppointmentNotEditable)
	}

	// Edits cannot move a pending appointment into the past.
	if _, err := f.usecase.UpdateAppointment(f.ctx(), pendingID, &dto.UpdateAppointmentRequest{
		DoctorID: f.doctorID,
		Date:     "2026-02-01",
		Time:     "10:00",
		Reason:   "moved back",
	}); err != ErrPastSchedule {
		t.Fatalf("update into past error = %v, want %v", err, ErrPastSchedule)
	}
}

func TestCancelAppointment(t *testing.T) {
	f := setupAppointmentTest(t)

	pendingID := f.seedAppointment(t, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusPending)
	completedID := f.seedAppointment(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusCompleted)

	if err := f.usecase.CancelAppointment(f.ctx(), pendingID); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if got := f.appointmentStatus(t, pendingID); got != entity.AppointmentStatusCancelled {
		t.Fatalf("status after cancel = %s, want cancelled", got)
	}

	// Cancelling twice is reported distinctly from other failures.
	if err := f.usecase.CancelAppointment(f.ctx(), pendingID); err != ErrAppointmentAlreadyCancelled {
		t.Fatalf("double cancel error = %v, want %v", err, ErrAppointmentAlreadyCancelled)
	}

	if err := f.usecase.CancelAppointment(f.ctx(), completedID); err != ErrAppointmentNotCancellable {
		t.Fatalf("cancel completed error = %v, want %v", err, ErrAppointmentNotCancellable)
	}

	if err := f.usecase.CancelAppointment(f.ctx(), uuid.New()); err != ErrAppointmentNotFound {
		t.Fatalf("cancel unknown error = %v, want %v", err, ErrAppointmentNotFound)
	}
}

func TestCancelAppointment_OwnershipScoped(t *testing.T) {
	f := setupAppointmentTest(t)

	otherPatientID := uuid.New()
	if err := f.db.Create(&entity.User{
		ID:       otherPatientID,
		RoleID:   entity.RoleIDPatient,
		Email:    "other@example.com",
		Password: "x",
		FullName: "Other Patient",
	}).Error; err != nil {
		t.Fatalf("seed other patient: %v", err)
	}

	foreignID := uuid.New()
	if err := f.db.Create(&entity.Appointment{
		ID:        foreignID,
		DoctorID:  f.doctorID,
		PatientID: otherPatientID,
		Date:      time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC),
		Time:      "10:00",
		Reason:    "checkup",
		Status:    entity.AppointmentStatusPending,
	}).Error; err != nil {
		t.Fatalf("seed foreign appointment: %v", err)
	}

	// Another patient's appointment is indistinguishable from a missing one.
	if err := f.usecase.CancelAppointment(f.ctx(), foreignID); err != ErrAppointmentNotFound {
		t.Fatalf("cancel foreign error = %v, want %v", err, ErrAppointmentNotFound)
	}
	if got := f.appointmentStatus(t, foreignID); got != entity.AppointmentStatusPending {
		t.Fatalf("foreign appointment status = %s, want pending", got)
	}
}

func TestDeleteAppointment_TerminalOnly(t *testing.T) {
	f := setupAppointmentTest(t)

	pendingID := f.seedAppointment(t, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusPending)
	cancelledID := f.seedAppointment(t, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "11:00", entity.AppointmentStatusCancelled)

	if err := f.usecase.DeleteAppointment(f.ctx(), pendingID); err != ErrAppointmentDeleteNotAllowed {
		t.Fatalf("delete pending error = %v, want %v", err, ErrAppointmentDeleteNotAllowed)
	}

	if err := f.usecase.DeleteAppointment(f.ctx(), cancelledID); err != nil {
		t.Fatalf("delete cancelled: %v", err)
	}

	var count int64
	if err := f.db.Model(&entity.Appointment{}).Where("id = ?", cancelledID).Count(&count).Error; err != nil {
		t.Fatalf("count appointments: %v", err)
	}
	if count != 0 {
		t.Errorf("deleted appointment still present")
	}

	if err := f.usecase.DeleteAppointment(f.ctx(), uuid.New()); err != ErrAppointmentNotFound {
		t.Fatalf("delete unknown error = %v, want %v", err, ErrAppointmentNotFound)
	}
}

func TestRefreshStatuses_SweepsDuePendingOnly(t *testing.T) {
	f := setupAppointmentTest(t)

	dueID := f.seedAppointment(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusPending)
	futureID := f.seedAppointment(t, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusPending)
	cancelledDueID := f.seedAppointment(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), "11:00", entity.AppointmentStatusCancelled)

	if err := f.usecase.RefreshStatuses(f.ctx()); err != nil {
		t.Fatalf("RefreshStatuses: %v", err)
	}

	if got := f.appointmentStatus(t, dueID); got != entity.AppointmentStatusCompleted {
		t.Errorf("due appointment = %s, want completed", got)
	}
	if got := f.appointmentStatus(t, futureID); got != entity.AppointmentStatusPending {
		t.Errorf("future appointment = %s, want pending", got)
	}
	if got := f.appointmentStatus(t, cancelledDueID); got != entity.AppointmentStatusCancelled {
		t.Errorf("cancelled appointment = %s, want cancelled", got)
	}

	// Running the sweep again must change nothing.
	if err := f.usecase.RefreshStatuses(f.ctx()); err != nil {
		t.Fatalf("second RefreshStatuses: %v", err)
	}
	if got := f.appointmentStatus(t, dueID); got != entity.AppointmentStatusCompleted {
		t.Errorf("due appointment after second sweep = %s, want completed", got)
	}
}

func TestRefreshStatuses_BoundaryInstant(t *testing.T) {
	f := setupAppointmentTest(t)

	// Scheduled exactly at the sweep instant counts as reached.
	atNowID := f.seedAppointment(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "12:00", entity.AppointmentStatusPending)
	justAfterID := f.seedAppointment(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "12:01", entity.AppointmentStatusPending)

	if err := f.usecase.RefreshStatuses(f.ctx()); err != nil {
		t.Fatalf("RefreshStatuses: %v", err)
	}

	if got := f.appointmentStatus(t, atNowID); got != entity.AppointmentStatusCompleted {
		t.Errorf("appointment at sweep instant = %s, want completed", got)
	}
	if got := f.appointmentStatus(t, justAfterID); got != entity.AppointmentStatusPending {
		t.Errorf("appointment one minute later = %s, want pending", got)
	}
}

func TestCompleteIfPending_SingleTransition(t *testing.T) {
	f := setupAppointmentTest(t)

	id := f.seedAppointment(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusPending)

	repo := repository.NewAppointmentRepository()
	rows, err := repo.CompleteIfPending(f.db, id)
	if err != nil {
		t.Fatalf("CompleteIfPending: %v", err)
	}
	if rows != 1 {
		t.Fatalf("first transition rows = %d, want 1", rows)
	}

	rows, err = repo.CompleteIfPending(f.db, id)
	if err != nil {
		t.Fatalf("second CompleteIfPending: %v", err)
	}
	if rows != 0 {
		t.Fatalf("second transition rows = %d, want 0", rows)
	}
}

func TestGetMyAppointments_OrderedWithFreshStatuses(t *testing.T) {
	f := setupAppointmentTest(t)

	laterID := f.seedAppointment(t, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusPending)
	dueID := f.seedAppointment(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), "09:00", entity.AppointmentStatusPending)
	sameDayEarlierID := f.seedAppointment(t, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "08:00", entity.AppointmentStatusPending)

	resp, err := f.usecase.GetMyAppointments(f.ctx())
	if err != nil {
		t.Fatalf("GetMyAppointments: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3", resp.Total)
	}

	wantOrder := []uuid.UUID{dueID, sameDayEarlierID, laterID}
	for i, want := range wantOrder {
		if resp.Appointments[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, resp.Appointments[i].ID, want)
		}
	}

	// The due row was swept before listing.
	if resp.Appointments[0].Status != string(entity.AppointmentStatusCompleted) {
		t.Errorf("due appointment status = %s, want completed", resp.Appointments[0].Status)
	}
	if resp.Appointments[1].Status != string(entity.AppointmentStatusPending) {
		t.Errorf("future appointment status = %s, want pending", resp.Appointments[1].Status)
	}
}

func TestExportAppointments_ReturnsPDF(t *testing.T) {
	f := setupAppointmentTest(t)

	f.seedAppointment(t, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "10:00", entity.AppointmentStatusPending)

	report, err := f.usecase.ExportAppointments(f.ctx())
	if err != nil {
		t.Fatalf("ExportAppointments: %v", err)
	}
	if !bytes.HasPrefix(report.Content, []byte("%PDF")) {
		t.Fatalf("expected PDF magic bytes, got %q", report.Content[:8])
	}
	if report.Filename != "appointments_Maria_Lopez_20260210.pdf" {
		t.Errorf("filename = %q", report.Filename)
	}
}
