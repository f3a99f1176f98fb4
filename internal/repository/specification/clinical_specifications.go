package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionId filters documents / SOAP notes by their parent visit session
type BySessionId struct {
	SessionId uuid.UUID
}

func (s BySessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// ByPatientId filters sessions by patient
type ByPatientId struct {
	PatientId uuid.UUID
}

func (s ByPatientId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("patient_id = ?", s.PatientId)
}

// ByUserId filters rows owned by an operator (chat sessions, notifications)
type ByUserId struct {
	UserId uuid.UUID
}

func (s ByUserId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

// BySoapNoteId filters note embeddings by their parent note
type BySoapNoteId struct {
	SoapNoteId uuid.UUID
}

func (s BySoapNoteId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("soap_note_id = ?", s.SoapNoteId)
}

// ByChatSessionId filters chat messages by conversation
type ByChatSessionId struct {
	ChatSessionId uuid.UUID
}

func (s ByChatSessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionId)
}

// ByDocumentState filters documents by processing state
type ByDocumentState struct {
	State string
}

func (s ByDocumentState) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state = ?", s.State)
}

// PatientNameSearch does a case-insensitive match over patient names and MRN
type PatientNameSearch struct {
	Term string
}

func (s PatientNameSearch) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Term + "%"
	return db.Where(
		"first_name ILIKE ? OR last_name ILIKE ? OR medical_record_number ILIKE ?",
		pattern, pattern, pattern,
	)
}

// ByEmail filters users by email
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}
