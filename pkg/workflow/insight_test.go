package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestToggleMetadataSelection(t *testing.T) {
	gateway := newFakeGateway()
	s := NewInsightSelector(gateway)
	ctx := context.Background()

	docA := uuid.New()
	docB := uuid.New()

	if err := s.ToggleMetadata(ctx, docA); err != nil {
		t.Fatalf("ToggleMetadata(A) error = %v", err)
	}
	if err := s.ToggleMetadata(ctx, docB); err != nil {
		t.Fatalf("ToggleMetadata(B) error = %v", err)
	}

	state := s.State()
	if state.MetadataDocumentId == nil || *state.MetadataDocumentId != docB {
		t.Fatalf("active metadata = %v, want %v", state.MetadataDocumentId, docB)
	}
	if state.Metadata == nil {
		t.Fatal("metadata payload missing after fetch")
	}

	// Re-selecting the active document clears the slot entirely.
	if err := s.ToggleMetadata(ctx, docB); err != nil {
		t.Fatalf("ToggleMetadata(B) again error = %v", err)
	}
	state = s.State()
	if state.MetadataDocumentId != nil || state.Metadata != nil {
		t.Fatalf("toggle-off left state: id=%v payload=%v", state.MetadataDocumentId, state.Metadata)
	}
}

func TestInsightSlotsIndependent(t *testing.T) {
	gateway := newFakeGateway()
	s := NewInsightSelector(gateway)
	ctx := context.Background()

	docA := uuid.New()
	docB := uuid.New()

	if err := s.ToggleMetadata(ctx, docA); err != nil {
		t.Fatalf("ToggleMetadata error = %v", err)
	}
	if err := s.TogglePii(ctx, docB); err != nil {
		t.Fatalf("TogglePii error = %v", err)
	}

	state := s.State()
	if state.MetadataDocumentId == nil || *state.MetadataDocumentId != docA {
		t.Fatal("PII selection disturbed the metadata slot")
	}
	if state.PiiDocumentId == nil || *state.PiiDocumentId != docB {
		t.Fatal("metadata selection disturbed the PII slot")
	}
}

func TestToggleMetadataFetchError(t *testing.T) {
	gateway := newFakeGateway()
	gateway.metadataErr = errors.New("document not found")
	s := NewInsightSelector(gateway)

	docA := uuid.New()
	if err := s.ToggleMetadata(context.Background(), docA); err == nil {
		t.Fatal("expected fetch error")
	}

	state := s.State()
	if state.MetadataError != "document not found" {
		t.Fatalf("MetadataError = %q", state.MetadataError)
	}
	if state.MetadataDocumentId == nil || *state.MetadataDocumentId != docA {
		t.Fatal("fetch error cleared the selection; the panel should show the error in place")
	}
}

// A response that lands after the selection moved on must be discarded.
func TestStaleMetadataResponseDiscarded(t *testing.T) {
	gateway := newFakeGateway()
	started := make(chan struct{})
	release := make(chan struct{})
	gateway.metadataStarted = started
	gateway.metadataRelease = release

	s := NewInsightSelector(gateway)
	docA := uuid.New()
	docB := uuid.New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Fetch for A blocks inside the gateway until released.
		_ = s.ToggleMetadata(context.Background(), docA)
	}()

	<-started

	// While A's fetch is outstanding, the operator moves to B.
	if err := s.ToggleMetadata(context.Background(), docB); err != nil {
		t.Fatalf("ToggleMetadata(B) error = %v", err)
	}

	close(release)
	wg.Wait()

	state := s.State()
	if state.MetadataDocumentId == nil || *state.MetadataDocumentId != docB {
		t.Fatalf("active metadata = %v, want %v", state.MetadataDocumentId, docB)
	}
	if state.MetadataLoading {
		t.Fatal("B's completed fetch left the loading flag set")
	}
}

// Toggling the active document off while its fetch is still in flight must
// leave the slot fully cleared, including the loading flag.
func TestToggleOffDuringFetchClearsLoading(t *testing.T) {
	gateway := newFakeGateway()
	started := make(chan struct{})
	release := make(chan struct{})
	gateway.metadataStarted = started
	gateway.metadataRelease = release

	s := NewInsightSelector(gateway)
	docA := uuid.New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.ToggleMetadata(context.Background(), docA)
	}()

	<-started

	// Second toggle of the same id closes the panel mid-fetch.
	if err := s.ToggleMetadata(context.Background(), docA); err != nil {
		t.Fatalf("ToggleMetadata(A) off error = %v", err)
	}

	close(release)
	wg.Wait()

	state := s.State()
	if state.MetadataDocumentId != nil {
		t.Fatalf("active metadata = %v, want nil", state.MetadataDocumentId)
	}
	if state.MetadataLoading {
		t.Fatal("closed panel left the loading flag set")
	}
	if state.Metadata != nil {
		t.Fatal("stale response was applied to a closed panel")
	}
}

// Scenario: toggle the same document twice; the panel hides and nothing is
// left pending.
func TestToggleMetadataIdempotent(t *testing.T) {
	gateway := newFakeGateway()
	s := NewInsightSelector(gateway)
	ctx := context.Background()
	doc := uuid.New()

	if err := s.ToggleMetadata(ctx, doc); err != nil {
		t.Fatalf("first toggle error = %v", err)
	}
	if err := s.ToggleMetadata(ctx, doc); err != nil {
		t.Fatalf("second toggle error = %v", err)
	}

	state := s.State()
	if state.MetadataDocumentId != nil || state.Metadata != nil || state.MetadataLoading {
		t.Fatalf("panel not fully hidden: %+v", state)
	}
	if gateway.metadataCalls != 1 {
		t.Fatalf("metadataCalls = %d, want 1 (toggle-off must not fetch)", gateway.metadataCalls)
	}
}

func TestClearAll(t *testing.T) {
	gateway := newFakeGateway()
	s := NewInsightSelector(gateway)
	ctx := context.Background()

	_ = s.ToggleMetadata(ctx, uuid.New())
	_ = s.TogglePii(ctx, uuid.New())
	s.ClearAll()

	state := s.State()
	if state.MetadataDocumentId != nil || state.PiiDocumentId != nil {
		t.Fatalf("ClearAll left selections: %+v", state)
	}
}
