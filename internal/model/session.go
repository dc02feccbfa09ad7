package model

import (
	"time"

	"github.com/google/uuid"
)

// Flash is a one-shot message rendered on the next page load
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Session is the server-side record behind an authenticated browser.
// It lives in the session store with a sliding TTL, never in the database.
type Session struct {
	ID           string    `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	PatientName  string    `json:"patient_name"`
	LastActivity time.Time `json:"last_activity"`
	Flashes      []Flash   `json:"flashes,omitempty"`
}

// AddFlash queues a message for the next rendered page
func (s *Session) AddFlash(level, message string) {
	s.Flashes = append(s.Flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns queued messages and clears them
func (s *Session) PopFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}
