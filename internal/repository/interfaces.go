package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-portal/internal/model"
)

var (
	// ErrNotFound is returned when no patient matches the lookup
	ErrNotFound = errors.New("patient not found")
	// ErrDuplicateEmail is returned when a write collides with the
	// case-insensitive unique index on email
	ErrDuplicateEmail = errors.New("email already registered")
)

// PatientRepository is the single persisted-entity store. There is no
// delete: deactivation flips is_active and nothing else.
type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByEmail(ctx context.Context, email string) (*model.Patient, error)
	UpdateProfile(ctx context.Context, patient *model.Patient) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
