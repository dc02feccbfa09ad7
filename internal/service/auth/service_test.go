package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

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
	for _, existing := range r.patients {
		if strings.EqualFold(existing.Email, patient.Email) {
			return repository.ErrDuplicateEmail
		}
	}
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

func (r *fakePatientRepo) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	for _, patient := range r.patients {
		if strings.EqualFold(patient.Email, email) {
			clone := *patient
			return &clone, nil
		}
	}
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

type noopEmail struct{}

func (noopEmail) SendWelcome(_, _ string) error { return nil }

func newPatient(email string) *model.Patient {
	return &model.Patient{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo, noopEmail{})

	patient := newPatient("jane@example.com")
	require.NoError(t, svc.Register(ctx, patient, "Abcdef1!"))

	assert.NotEqual(t, uuid.Nil, patient.ID)
	assert.True(t, patient.IsActive)
	assert.NotEqual(t, "Abcdef1!", patient.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(patient.PasswordHash), []byte("Abcdef1!")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo, noopEmail{})

	require.NoError(t, svc.Register(ctx, newPatient("jane@example.com"), "Abcdef1!"))

	err := svc.Register(ctx, newPatient("jane@example.com"), "Abcdef1!")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo, noopEmail{})

	require.NoError(t, svc.Register(ctx, newPatient("jane@example.com"), "Abcdef1!"))

	err := svc.Register(ctx, newPatient("JANE@EXAMPLE.COM"), "Abcdef1!")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo, noopEmail{})

	require.NoError(t, svc.Register(ctx, newPatient("jane@example.com"), "Abcdef1!"))

	patient, err := svc.Login(ctx, "jane@example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", patient.Email)
	require.NotNil(t, patient.LastLoginAt)
	assert.WithinDuration(t, time.Now().UTC(), *patient.LastLoginAt, time.Minute)

	// recorded in the repository too, not only on the returned copy
	stored, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginFailureModesAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo, noopEmail{})

	registered := newPatient("jane@example.com")
	require.NoError(t, svc.Register(ctx, registered, "Abcdef1!"))

	deactivated := newPatient("gone@example.com")
	require.NoError(t, svc.Register(ctx, deactivated, "Abcdef1!"))
	require.NoError(t, repo.Deactivate(ctx, deactivated.ID))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "Abcdef1!"},
		{name: "wrong password", email: "jane@example.com", password: "Wrong999!"},
		{name: "deactivated account", email: "gone@example.com", password: "Abcdef1!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo, noopEmail{})

	patient := newPatient("jane@example.com")
	require.NoError(t, svc.Register(ctx, patient, "Abcdef1!"))

	require.NoError(t, svc.ChangePassword(ctx, patient.ID, "Abcdef1!", "Newpass2@"))

	_, err := svc.Login(ctx, "jane@example.com", "Abcdef1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "jane@example.com", "Newpass2@")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewService(repo, noopEmail{})

	patient := newPatient("jane@example.com")
	require.NoError(t, svc.Register(ctx, patient, "Abcdef1!"))

	err := svc.ChangePassword(ctx, patient.ID, "NotIt999!", "Newpass2@")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// the old password still works
	_, err = svc.Login(ctx, "jane@example.com", "Abcdef1!")
	assert.NoError(t, err)
}
