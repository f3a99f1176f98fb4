package workflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InsightSelector tracks which single document currently has its metadata
// panel and/or PII panel open. The two slots are independent; each holds at
// most one active document and at most one outstanding fetch.
type InsightSelector struct {
	mu      sync.Mutex
	gateway Gateway

	metadataActive *uuid.UUID
	metadata       *DocumentMetadata
	metadataLoad   bool
	metadataErr    string

	piiActive *uuid.UUID
	pii       *PiiStatus
	piiLoad   bool
	piiErr    string
}

type InsightState struct {
	MetadataDocumentId *uuid.UUID
	Metadata           *DocumentMetadata
	MetadataLoading    bool
	MetadataError      string

	PiiDocumentId *uuid.UUID
	Pii           *PiiStatus
	PiiLoading    bool
	PiiError      string
}

func NewInsightSelector(gateway Gateway) *InsightSelector {
	return &InsightSelector{gateway: gateway}
}

func (s *InsightSelector) State() InsightState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return InsightState{
		MetadataDocumentId: s.metadataActive,
		Metadata:           s.metadata,
		MetadataLoading:    s.metadataLoad,
		MetadataError:      s.metadataErr,
		PiiDocumentId:      s.piiActive,
		Pii:                s.pii,
		PiiLoading:         s.piiLoad,
		PiiError:           s.piiErr,
	}
}

// ToggleMetadata clears the slot when the id is already active, otherwise
// replaces the selection and fetches fresh. A response that arrives after the
// selection has moved on is discarded, not applied.
func (s *InsightSelector) ToggleMetadata(ctx context.Context, documentId uuid.UUID) error {
	s.mu.Lock()
	if s.metadataActive != nil && *s.metadataActive == documentId {
		s.metadataActive = nil
		s.metadata = nil
		s.metadataLoad = false
		s.metadataErr = ""
		s.mu.Unlock()
		return nil
	}

	id := documentId
	s.metadataActive = &id
	s.metadata = nil
	s.metadataErr = ""
	s.metadataLoad = true
	s.mu.Unlock()

	meta, err := s.gateway.GetDocumentMetadata(ctx, documentId)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stale-response guard: only commit if this id is still the active one.
	if s.metadataActive == nil || *s.metadataActive != documentId {
		return nil
	}
	s.metadataLoad = false
	if err != nil {
		s.metadataErr = err.Error()
		return err
	}
	s.metadata = meta
	return nil
}

// TogglePii is the symmetric, independent slot for PII status.
func (s *InsightSelector) TogglePii(ctx context.Context, documentId uuid.UUID) error {
	s.mu.Lock()
	if s.piiActive != nil && *s.piiActive == documentId {
		s.piiActive = nil
		s.pii = nil
		s.piiLoad = false
		s.piiErr = ""
		s.mu.Unlock()
		return nil
	}

	id := documentId
	s.piiActive = &id
	s.pii = nil
	s.piiErr = ""
	s.piiLoad = true
	s.mu.Unlock()

	pii, err := s.gateway.GetDocumentPiiStatus(ctx, documentId)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.piiActive == nil || *s.piiActive != documentId {
		return nil
	}
	s.piiLoad = false
	if err != nil {
		s.piiErr = err.Error()
		return err
	}
	s.pii = pii
	return nil
}

// ClearAll empties both slots and any pending fetch errors, e.g. on
// navigation away from the session view.
func (s *InsightSelector) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadataActive = nil
	s.metadata = nil
	s.metadataLoad = false
	s.metadataErr = ""
	s.piiActive = nil
	s.pii = nil
	s.piiLoad = false
	s.piiErr = ""
}
