package service

import (
	"bytes"
	"testing"
	"time"

	"hospital-appointment-server/internal/domain/entity"
	"hospital-appointment-server/pkg/clock"
)

func TestReportService_Generate_ProducesPDF(t *testing.T) {
	fixed := clock.Fixed{Instant: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewReportService(fixed, time.UTC)

	patient := &entity.User{
		FullName: "Maria Lopez",
		Email:    "maria@example.com",
	}
	appointments := []entity.Appointment{
		{
			Date:   time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC),
			Time:   "10:00:00",
			Status: entity.AppointmentStatusPending,
			Doctor: entity.User{FullName: "Dr. Gomez"},
		},
		{
			Date:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Time:   "16:30:00",
			Status: entity.AppointmentStatusCompleted,
			Doctor: entity.User{FullName: "Dr. Chen"},
		},
	}

	content, err := svc.Generate(patient, appointments)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Fatalf("expected PDF magic bytes, got %q", content[:8])
	}
}

func TestReportService_Generate_EmptyList(t *testing.T) {
	fixed := clock.Fixed{Instant: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewReportService(fixed, time.UTC)

	content, err := svc.Generate(&entity.User{FullName: "Maria Lopez", Email: "m@example.com"}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(content) == 0 {
		t.Fatal("expected non-empty PDF output")
	}
}

func TestReportService_Filename(t *testing.T) {
	fixed := clock.Fixed{Instant: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewReportService(fixed, time.UTC)

	got := svc.Filename(&entity.User{FullName: "Maria Lopez"})
	want := "appointments_Maria_Lopez_20260210.pdf"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}
}
