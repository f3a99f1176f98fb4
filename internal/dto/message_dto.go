package dto

import "github.com/google/uuid"

// PublishEmbedSoapNoteMessage is the watermill payload that asks the
// consumer to (re)embed one SOAP note.
type PublishEmbedSoapNoteMessage struct {
	SoapNoteId uuid.UUID `json:"soap_note_id"`
	UserId     uuid.UUID `json:"user_id"`
}
