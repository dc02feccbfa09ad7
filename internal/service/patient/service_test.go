package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/repository"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, patient *model.Patient) error {
	clone := *patient
	r.patients[patient.ID] = &clone
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *patient
	return &clone, nil
}

func (r *fakePatientRepo) GetByEmail(_ context.Context, _ string) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}

func (r *fakePatientRepo) UpdateProfile(_ context.Context, patient *model.Patient) error {
	stored, ok := r.patients[patient.ID]
	if !ok {
		return repository.ErrNotFound
	}
	*stored = *patient
	return nil
}

func (r *fakePatientRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	patient, ok := r.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	patient.PasswordHash = hash
	return nil
}

func (r *fakePatientRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	patient, ok := r.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	patient.LastLoginAt = &at
	return nil
}

func (r *fakePatientRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	patient, ok := r.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	patient.IsActive = false
	return nil
}

func seedPatient(t *testing.T, repo *fakePatientRepo) *model.Patient {
	t.Helper()
	patient := &model.Patient{
		ID:        uuid.New(),
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Phone:     "5551234567",
		Address:   "123 Main Street, Springfield",
		IsActive:  true,
	}
	require.NoError(t, repo.Create(context.Background(), patient))
	return patient
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo)
	patient := seedPatient(t, repo)

	updated, err := svc.UpdateProfile(ctx, patient.ID, &model.ProfileForm{
		FirstName:             "  Janet ",
		LastName:              "Smith",
		Phone:                 "(555) 987-6543",
		Address:               "456 Oak Avenue, Springfield",
		EmergencyContactName:  "John Smith",
		EmergencyContactPhone: "555-111-2222",
	})
	require.NoError(t, err)

	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)
	assert.Equal(t, "5559876543", updated.Phone)
	assert.Equal(t, "5551112222", updated.EmergencyContactPhone)

	// email is untouched by profile edits
	assert.Equal(t, "jane@example.com", updated.Email)

	stored, err := svc.Get(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janet Smith", stored.FullName())
}

func TestUpdateProfileUnknownPatient(t *testing.T) {
	svc := NewService(newFakePatientRepo())

	_, err := svc.UpdateProfile(context.Background(), uuid.New(), &model.ProfileForm{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo)
	patient := seedPatient(t, repo)

	require.NoError(t, svc.Deactivate(ctx, patient.ID))

	stored, err := svc.Get(ctx, patient.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}
