package entity

import (
	"testing"
)

func TestDocumentStateTransitions(t *testing.T) {
	tests := []struct {
		name string
		from DocumentState
		to   DocumentState
		want bool
	}{
		{"pending to extracting", DocumentStatePending, DocumentStateExtracting, true},
		{"pending to extracted skips extraction", DocumentStatePending, DocumentStateExtracted, false},
		{"pending to generating skips extraction", DocumentStatePending, DocumentStateGenerating, false},
		{"extracting to extracted", DocumentStateExtracting, DocumentStateExtracted, true},
		{"extracted to generating", DocumentStateExtracted, DocumentStateGenerating, true},
		{"generating to generated", DocumentStateGenerating, DocumentStateGenerated, true},
		{"generated reprocess", DocumentStateGenerated, DocumentStateGenerating, true},
		{"extracting to failed", DocumentStateExtracting, DocumentStateFailed, true},
		{"failed retry extraction", DocumentStateFailed, DocumentStateExtracting, true},
		{"generated back to pending", DocumentStateGenerated, DocumentStatePending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// SoapGenerated must never hold without TextExtracted. The state machine
// makes the inverse unrepresentable; assert it over every state.
func TestSoapGeneratedImpliesTextExtracted(t *testing.T) {
	states := []DocumentState{
		DocumentStatePending,
		DocumentStateExtracting,
		DocumentStateExtracted,
		DocumentStateGenerating,
		DocumentStateGenerated,
		DocumentStateFailed,
	}

	for _, s := range states {
		if s.SoapGenerated() && !s.TextExtracted() {
			t.Errorf("state %s reports SoapGenerated without TextExtracted", s)
		}
	}
}

// A document that fails during generation still holds its extracted text and
// must stay eligible for the failed -> generating retry.
func TestTextAvailableSurvivesGenerationFailure(t *testing.T) {
	text := "extracted clinical text"
	doc := Document{State: DocumentStateExtracted, ExtractedText: &text}

	if err := doc.Transition(DocumentStateGenerating, ""); err != nil {
		t.Fatalf("Transition to generating: %v", err)
	}
	if err := doc.Transition(DocumentStateFailed, "llm timeout"); err != nil {
		t.Fatalf("Transition to failed: %v", err)
	}

	if !doc.TextAvailable() {
		t.Error("TextAvailable() = false after generation failure with stored text")
	}
	if !doc.State.CanTransitionTo(DocumentStateGenerating) {
		t.Error("failed document with stored text cannot retry generation")
	}
}

func TestTextAvailableFalseWhenExtractionFailed(t *testing.T) {
	doc := Document{State: DocumentStateFailed}
	if doc.TextAvailable() {
		t.Error("TextAvailable() = true for a document that never extracted")
	}
}

func TestDocumentTransitionRecordsFailureReason(t *testing.T) {
	doc := Document{State: DocumentStateExtracting}

	if err := doc.Transition(DocumentStateFailed, "ocr timeout"); err != nil {
		t.Fatalf("Transition returned error: %v", err)
	}
	if doc.FailureReason == nil || *doc.FailureReason != "ocr timeout" {
		t.Errorf("FailureReason = %v, want %q", doc.FailureReason, "ocr timeout")
	}

	if err := doc.Transition(DocumentStateExtracting, ""); err != nil {
		t.Fatalf("retry transition returned error: %v", err)
	}
	if doc.FailureReason != nil {
		t.Errorf("FailureReason not cleared on retry, got %q", *doc.FailureReason)
	}

	if err := doc.Transition(DocumentStateGenerated, ""); err == nil {
		t.Error("expected error for illegal transition extracting -> generated")
	}
}
