package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentState is the single enumerated processing state of a document.
// It replaces the pair of independent text_extracted / soap_generated
// booleans so that illegal combinations (SOAP generated from a document whose
// text was never extracted) cannot be represented.
type DocumentState string

const (
	DocumentStatePending    DocumentState = "pending"
	DocumentStateExtracting DocumentState = "extracting"
	DocumentStateExtracted  DocumentState = "extracted"
	DocumentStateGenerating DocumentState = "generating"
	DocumentStateGenerated  DocumentState = "generated"
	DocumentStateFailed     DocumentState = "failed"
)

// documentTransitions lists the legal forward transitions.
var documentTransitions = map[DocumentState][]DocumentState{
	DocumentStatePending:    {DocumentStateExtracting, DocumentStateFailed},
	DocumentStateExtracting: {DocumentStateExtracted, DocumentStateFailed},
	DocumentStateExtracted:  {DocumentStateGenerating, DocumentStateFailed},
	DocumentStateGenerating: {DocumentStateGenerated, DocumentStateFailed},
	DocumentStateGenerated:  {DocumentStateGenerating}, // reprocess
	DocumentStateFailed:     {DocumentStateExtracting, DocumentStateGenerating},
}

func (s DocumentState) CanTransitionTo(next DocumentState) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TextExtracted reports whether the document's text is available. Every state
// past extraction implies it.
func (s DocumentState) TextExtracted() bool {
	switch s {
	case DocumentStateExtracted, DocumentStateGenerating, DocumentStateGenerated:
		return true
	}
	return false
}

// SoapGenerated implies TextExtracted by construction of the state machine.
func (s DocumentState) SoapGenerated() bool {
	return s == DocumentStateGenerated
}

func (s DocumentState) Processing() bool {
	return s == DocumentStateExtracting || s == DocumentStateGenerating
}

type Document struct {
	Id            uuid.UUID
	SessionId     uuid.UUID
	DisplayName   string
	FileType      string
	FileSize      int64
	FilePath      string
	State         DocumentState
	FailureReason *string
	ExtractedText *string

	// PII analysis result, populated during extraction.
	PiiMasked         bool
	PiiEntitiesFound  *int
	PiiProcessingNote *string

	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// TextAvailable reports whether extracted text can be read off the document.
// A document that failed during generation keeps its stored text, so the
// check looks at the stored text as well as the state: state alone would
// lock such a document out of the failed -> generating retry.
func (d *Document) TextAvailable() bool {
	return d.State.TextExtracted() || d.ExtractedText != nil
}

// Transition moves the document to the next state, recording the failure
// reason when entering failed.
func (d *Document) Transition(next DocumentState, reason string) error {
	if !d.State.CanTransitionTo(next) {
		return fmt.Errorf("illegal document transition: %s -> %s", d.State, next)
	}
	d.State = next
	if next == DocumentStateFailed {
		d.FailureReason = &reason
	} else {
		d.FailureReason = nil
	}
	return nil
}
