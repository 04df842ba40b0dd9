package usecase

import (
	"context"
	"errors"
	"time"

	"hospital-appointment-server/internal/converter"
	"hospital-appointment-server/internal/delivery/dto"
	"hospital-appointment-server/internal/delivery/http/middleware"
	"hospital-appointment-server/internal/domain/entity"
	"hospital-appointment-server/internal/domain/repository"
	"hospital-appointment-server/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrInvalidOccurredAt    = errors.New("invalid occurred_at, use RFC 3339")
	ErrEncounterNotAPatient = errors.New("encounters can only be recorded for patients")
)

// EncounterUsecase covers the medical-history module: doctors record
// encounters, patients read their own history.
type EncounterUsecase interface {
	CreateEncounter(ctx context.Context, req *dto.CreateEncounterRequest) (*dto.EncounterResponse, error)
	GetMyMedicalHistory(ctx context.Context) (*dto.EncounterListResponse, error)
}

type encounterUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	encounterRepo repository.EncounterRepository
	userRepo      repository.UserRepository
	auditService  service.AuditService
}

func NewEncounterUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	encounterRepo repository.EncounterRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) EncounterUsecase {
	return &encounterUsecase{
		db:            db,
		log:           log,
		encounterRepo: encounterRepo,
		userRepo:      userRepo,
		auditService:  auditService,
	}
}

func (u *encounterUsecase) CreateEncounter(ctx context.Context, req *dto.CreateEncounterRequest) (*dto.EncounterResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	occurredAt, err := time.Parse(time.RFC3339, req.OccurredAt)
	if err != nil {
		return nil, ErrInvalidOccurredAt
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.userRepo.FindByID(tx, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	if patient.RoleID != entity.RoleIDPatient {
		return nil, ErrEncounterNotAPatient
	}

	encounter := &entity.Encounter{
		PatientID:  patient.ID,
		DoctorID:   doctorID,
		OccurredAt: occurredAt,
		Diagnosis:  req.Diagnosis,
		Treatment:  req.Treatment,
	}

	if err := u.encounterRepo.Create(tx, encounter); err != nil {
		u.log.Warnf("Failed to create encounter: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &doctorID, entity.AuditActionEncounterCreate, "encounter", encounter.ID.String(), converter.EncounterToResponse(encounter)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.EncounterToResponse(encounter), nil
}

func (u *encounterUsecase) GetMyMedicalHistory(ctx context.Context) (*dto.EncounterListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	encounters, err := u.encounterRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find encounters for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.EncounterListResponse{
		Encounters: converter.EncountersToResponses(encounters),
		Total:      len(encounters),
	}, nil
}
