package entity

import (
	"testing"
	"time"
)

func TestAppointment_ScheduledAt_CombinesDateAndTime(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	appointment := &Appointment{
		Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Time: "09:30",
	}

	got, err := appointment.ScheduledAt(loc)
	if err != nil {
		t.Fatalf("ScheduledAt: %v", err)
	}

	want := time.Date(2026, 3, 14, 9, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("ScheduledAt = %v, want %v", got, want)
	}
	if got.Location() != loc {
		t.Fatalf("ScheduledAt location = %v, want %v", got.Location(), loc)
	}
}

func TestAppointment_ScheduledAt_AcceptsSeconds(t *testing.T) {
	// Database time columns come back as HH:MM:SS.
	appointment := &Appointment{
		Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Time: "09:30:15",
	}

	got, err := appointment.ScheduledAt(time.UTC)
	if err != nil {
		t.Fatalf("ScheduledAt: %v", err)
	}

	want := time.Date(2026, 3, 14, 9, 30, 15, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ScheduledAt = %v, want %v", got, want)
	}
}

func TestAppointment_ScheduledAt_RejectsGarbage(t *testing.T) {
	appointment := &Appointment{
		Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Time: "soon",
	}

	if _, err := appointment.ScheduledAt(time.UTC); err == nil {
		t.Fatal("expected error for invalid time value")
	}
}

func TestAppointment_IsTerminal(t *testing.T) {
	cases := []struct {
		status AppointmentStatus
		want   bool
	}{
		{AppointmentStatusPending, false},
		{AppointmentStatusCompleted, true},
		{AppointmentStatusCancelled, true},
	}

	for _, tc := range cases {
		appointment := &Appointment{Status: tc.status}
		if got := appointment.IsTerminal(); got != tc.want {
			t.Errorf("IsTerminal(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
