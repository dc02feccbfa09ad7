package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/repository"
	"github.com/jwalitptl/patient-portal/internal/validator"
)

type Service struct {
	patientRepo repository.PatientRepository
}

func NewService(patientRepo repository.PatientRepository) *Service {
	return &Service{patientRepo: patientRepo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.patientRepo.Get(ctx, id)
}

// UpdateProfile applies the validated form to the stored record. Phone
// numbers are normalized to digits before storage; email and password
// have their own flows and are untouched here.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, form *model.ProfileForm) (*model.Patient, error) {
	patient, err := s.patientRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	patient.FirstName = strings.TrimSpace(form.FirstName)
	patient.LastName = strings.TrimSpace(form.LastName)
	patient.Phone = validator.NormalizePhone(form.Phone)
	patient.Address = strings.TrimSpace(form.Address)
	patient.EmergencyContactName = strings.TrimSpace(form.EmergencyContactName)
	patient.EmergencyContactPhone = validator.NormalizePhone(form.EmergencyContactPhone)

	if err := s.patientRepo.UpdateProfile(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	log.Info().Str("patient_id", id.String()).Time("updated_at", patient.UpdatedAt).Msg("profile updated")
	return patient, nil
}

// Deactivate flips is_active off. Nothing is deleted; the record stays
// for audit and reactivation by support.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.patientRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate patient: %w", err)
	}
	log.Info().Str("patient_id", id.String()).Msg("account deactivated")
	return nil
}
