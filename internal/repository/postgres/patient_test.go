package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/internal/repository"
)

func newMockRepo(t *testing.T) (repository.PatientRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPatientRepository(sqlx.NewDb(db, "postgres")), mock
}

var patientColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "date_of_birth",
	"gender", "address", "emergency_contact_name", "emergency_contact_phone",
	"password_hash", "is_active", "created_at", "updated_at", "last_login_at",
}

func patientRow(p *model.Patient) *sqlmock.Rows {
	return sqlmock.NewRows(patientColumns).AddRow(
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth,
		p.Gender, p.Address, p.EmergencyContactName, p.EmergencyContactPhone,
		p.PasswordHash, p.IsActive, p.CreatedAt, p.UpdatedAt, p.LastLoginAt,
	)
}

func samplePatient() *model.Patient {
	now := time.Now().UTC()
	return &model.Patient{
		ID:                    uuid.New(),
		FirstName:             "Jane",
		LastName:              "Doe",
		Email:                 "jane@example.com",
		Phone:                 "5551234567",
		DateOfBirth:           time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:                "female",
		Address:               "123 Main Street, Springfield",
		EmergencyContactName:  "John Doe",
		EmergencyContactPhone: "5557654321",
		PasswordHash:          "$2a$12$hash",
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func TestCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	patient := samplePatient()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO patients")).
		WithArgs(
			patient.ID, patient.FirstName, patient.LastName, patient.Email,
			patient.Phone, patient.DateOfBirth, patient.Gender, patient.Address,
			patient.EmergencyContactName, patient.EmergencyContactPhone,
			patient.PasswordHash, patient.IsActive,
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), patient))
	assert.False(t, patient.CreatedAt.IsZero())
	assert.Equal(t, patient.CreatedAt, patient.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	patient := samplePatient()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO patients")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_patients_email_lower"})

	err := repo.Create(context.Background(), patient)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo, mock := newMockRepo(t)
	patient := samplePatient()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM patients WHERE id = $1")).
		WithArgs(patient.ID).
		WillReturnRows(patientRow(patient))

	got, err := repo.Get(context.Background(), patient.ID)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, got.ID)
	assert.Equal(t, patient.Email, got.Email)
	assert.Nil(t, got.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM patients WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	patient := samplePatient()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM patients WHERE LOWER(email) = LOWER($1)")).
		WithArgs("JANE@example.com").
		WillReturnRows(patientRow(patient))

	got, err := repo.GetByEmail(context.Background(), "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, patient.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM patients WHERE LOWER(email) = LOWER($1)")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile(t *testing.T) {
	repo, mock := newMockRepo(t)
	patient := samplePatient()
	before := patient.UpdatedAt

	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET")).
		WithArgs(
			patient.FirstName, patient.LastName, patient.Phone, patient.Address,
			patient.EmergencyContactName, patient.EmergencyContactPhone,
			sqlmock.AnyArg(), patient.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(context.Background(), patient))
	assert.False(t, patient.UpdatedAt.Before(before))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	patient := samplePatient()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(context.Background(), patient)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET password_hash = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("$2a$12$newhash", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), id, "$2a$12$newhash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastLogin(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET last_login_at = $1 WHERE id = $2")).
		WithArgs(at, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), id, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET is_active = false, updated_at = $1 WHERE id = $2")).
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE patients SET is_active = false, updated_at = $1 WHERE id = $2")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
