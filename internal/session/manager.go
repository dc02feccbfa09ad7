// Package session tracks authenticated browsers. A session lives
// server-side under a sliding inactivity timeout; the browser holds only
// a signed token naming the session ID.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-portal/internal/model"
)

var (
	// ErrNoSession is returned when the request carries no usable session
	ErrNoSession = errors.New("no session")
	// ErrExpired is returned when the inactivity window has elapsed;
	// the session is already destroyed when this comes back
	ErrExpired = errors.New("session expired")
)

type Manager struct {
	store   Store
	secret  []byte
	timeout time.Duration

	// injectable for timeout tests
	now func() time.Time
}

func NewManager(store Store, secret string, timeout time.Duration) *Manager {
	return &Manager{
		store:   store,
		secret:  []byte(secret),
		timeout: timeout,
		now:     time.Now,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func patientKey(id uuid.UUID) string {
	return "patient-sessions:" + id.String()
}

// Create establishes a fresh authenticated session and returns the
// signed cookie token for it.
func (m *Manager) Create(ctx context.Context, patient *model.Patient) (string, *model.Session, error) {
	sess := &model.Session{
		ID:           uuid.New().String(),
		PatientID:    patient.ID,
		PatientName:  patient.FullName(),
		LastActivity: m.now().UTC(),
	}

	if err := m.persist(ctx, sess); err != nil {
		return "", nil, err
	}
	if err := m.store.AddToSet(ctx, patientKey(patient.ID), sess.ID); err != nil {
		return "", nil, err
	}

	token, err := m.signToken(sess.ID)
	if err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

// Load resolves a cookie token to its session. A session idle past the
// timeout is destroyed and reported expired; an active one gets its
// last-activity bumped and its TTL re-armed.
func (m *Manager) Load(ctx context.Context, token string) (*model.Session, error) {
	id, err := m.parseToken(token)
	if err != nil {
		return nil, ErrNoSession
	}

	raw, err := m.store.Get(ctx, sessionKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if m.now().Sub(sess.LastActivity) >= m.timeout {
		if err := m.Destroy(ctx, &sess); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	sess.LastActivity = m.now().UTC()
	if err := m.persist(ctx, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save writes session state back without touching last-activity, used
// for flash messages queued mid-request.
func (m *Manager) Save(ctx context.Context, sess *model.Session) error {
	return m.persist(ctx, sess)
}

// Destroy removes one session unconditionally
func (m *Manager) Destroy(ctx context.Context, sess *model.Session) error {
	if err := m.store.Delete(ctx, sessionKey(sess.ID)); err != nil {
		return err
	}
	return m.store.RemoveFromSet(ctx, patientKey(sess.PatientID), sess.ID)
}

// DestroyOthers removes every session of the patient except keepID.
// Called after a password change so stale sessions die with the old
// credential.
func (m *Manager) DestroyOthers(ctx context.Context, patientID uuid.UUID, keepID string) error {
	return m.destroyMatching(ctx, patientID, func(id string) bool { return id != keepID })
}

// DestroyAll removes every session of the patient, used on deactivation
func (m *Manager) DestroyAll(ctx context.Context, patientID uuid.UUID) error {
	return m.destroyMatching(ctx, patientID, func(string) bool { return true })
}

func (m *Manager) destroyMatching(ctx context.Context, patientID uuid.UUID, match func(string) bool) error {
	members, err := m.store.SetMembers(ctx, patientKey(patientID))
	if err != nil {
		return err
	}

	var doomed []string
	for _, id := range members {
		if match(id) {
			doomed = append(doomed, id)
		}
	}
	if len(doomed) == 0 {
		return nil
	}

	keys := make([]string, len(doomed))
	for i, id := range doomed {
		keys[i] = sessionKey(id)
	}
	if err := m.store.Delete(ctx, keys...); err != nil {
		return err
	}
	return m.store.RemoveFromSet(ctx, patientKey(patientID), doomed...)
}

func (m *Manager) persist(ctx context.Context, sess *model.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return m.store.Set(ctx, sessionKey(sess.ID), raw, m.timeout)
}
