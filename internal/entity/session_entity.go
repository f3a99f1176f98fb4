package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a single patient visit record. DocumentCount and SoapNoteCount
// are confirmed counters: they are recomputed from the database on read and
// never incremented optimistically.
type Session struct {
	Id            uuid.UUID
	PatientId     uuid.UUID
	VisitDate     time.Time
	Notes         string
	DocumentCount int
	SoapNoteCount int
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
