package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/patient-portal/internal/email"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// inactive account alike, so a caller cannot probe which one failed
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registration hits an existing address
	ErrEmailTaken = errors.New("email already registered")
)

const bcryptCost = 12

type Service struct {
	patientRepo repository.PatientRepository
	emailSvc    email.Service
}

func NewService(patientRepo repository.PatientRepository, emailSvc email.Service) *Service {
	return &Service{
		patientRepo: patientRepo,
		emailSvc:    emailSvc,
	}
}

// Register hashes the password and persists the new patient. The unique
// index on email is the last word on duplicates; the racing writer loses
// and gets ErrEmailTaken like everyone else.
func (s *Service) Register(ctx context.Context, patient *model.Patient, password string) error {
	if existing, _ := s.patientRepo.GetByEmail(ctx, patient.Email); existing != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	patient.ID = uuid.New()
	patient.PasswordHash = string(hash)
	patient.IsActive = true

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}

	go func(to, name string) {
		if err := s.emailSvc.SendWelcome(to, name); err != nil {
			log.Warn().Err(err).Msg("welcome email not sent")
		}
	}(patient.Email, patient.FullName())

	log.Info().Str("patient_id", patient.ID.String()).Msg("patient registered")
	return nil
}

// Login verifies credentials against an active account and records the
// login time. All failure modes collapse into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*model.Patient, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(patient.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !patient.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.patientRepo.UpdateLastLogin(ctx, patient.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	patient.LastLoginAt = &now

	log.Info().Str("patient_id", patient.ID.String()).Msg("patient logged in")
	return patient, nil
}

// ChangePassword verifies the current password before storing a new
// hash. Strength rules are checked at the form boundary.
func (s *Service) ChangePassword(ctx context.Context, patientID uuid.UUID, currentPassword, newPassword string) error {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(patient.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.patientRepo.UpdatePassword(ctx, patientID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Info().Str("patient_id", patientID.String()).Msg("password changed")
	return nil
}
