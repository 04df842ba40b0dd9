package usecase

import (
	"context"
	"testing"
	"time"

	"hospital-appointment-server/config"
	"hospital-appointment-server/internal/delivery/dto"
	"hospital-appointment-server/internal/domain/entity"
	"hospital-appointment-server/internal/repository"
	"hospital-appointment-server/internal/service"
	"hospital-appointment-server/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) (*gorm.DB, AuthUsecase) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

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
			consultation_fee NUMERIC NOT NULL DEFAULT 0
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

	log := logrus.New()
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})

	uc := NewAuthUsecase(db, log, repository.NewUserRepository(), repository.NewDoctorProfileRepository(), auditService, jwtService, nil)
	return db, uc
}

func TestRegisterPatient(t *testing.T) {
	db, uc := setupAuthTest(t)

	resp, err := uc.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		Email:    "Maria@Example.com",
		Password: "secret123",
		FullName: "Maria Lopez",
	})
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}

	if resp.Role != entity.RolePatient {
		t.Errorf("role = %q, want %q", resp.Role, entity.RolePatient)
	}
	if resp.Email != "maria@example.com" {
		t.Errorf("email = %q, want lowercased", resp.Email)
	}

	var user entity.User
	if err := db.First(&user, "email = ?", "maria@example.com").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.RoleID != entity.RoleIDPatient {
		t.Errorf("role_id = %d, want %d", user.RoleID, entity.RoleIDPatient)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")); err != nil {
		t.Errorf("stored password is not a valid hash of the input: %v", err)
	}
}

func TestRegisterDoctor(t *testing.T) {
	db, uc := setupAuthTest(t)

	resp, err := uc.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
		Email:           "doc@example.com",
		Password:        "secret123",
		FullName:        "Dr. Gomez",
		Specialization:  "Cardiology",
		Biography:       "20 years of practice",
		ConsultationFee: "150.50",
	})
	if err != nil {
		t.Fatalf("RegisterDoctor: %v", err)
	}

	if resp.Role != entity.RoleDoctor {
		t.Errorf("role = %q, want %q", resp.Role, entity.RoleDoctor)
	}
	if resp.DoctorProfile == nil {
		t.Fatal("expected doctor profile in response")
	}
	if !resp.DoctorProfile.ConsultationFee.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("consultation fee = %s, want 150.50", resp.DoctorProfile.ConsultationFee)
	}

	var profile entity.DoctorProfile
	if err := db.First(&profile, "user_id = ?", resp.ID).Error; err != nil {
		t.Fatalf("load doctor profile: %v", err)
	}
	if profile.Specialization != "Cardiology" {
		t.Errorf("specialization = %q, want Cardiology", profile.Specialization)
	}
}

func TestRegisterDoctor_InvalidFee(t *testing.T) {
	_, uc := setupAuthTest(t)

	cases := []string{"not-a-number", "-10"}
	for _, fee := range cases {
		_, err := uc.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
			Email:           "doc@example.com",
			Password:        "secret123",
			FullName:        "Dr. Gomez",
			Specialization:  "Cardiology",
			ConsultationFee: fee,
		})
		if err != ErrInvalidFee {
			t.Errorf("fee %q: error = %v, want %v", fee, err, ErrInvalidFee)
		}
	}
}
