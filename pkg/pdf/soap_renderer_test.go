package pdf

import (
	"bytes"
	"testing"
	"time"
)

func TestRenderProducesPdf(t *testing.T) {
	doc := SoapDocument{
		PatientName:  "Jane Roe",
		VisitDate:    time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		NoteId:       "7b0c1d2e",
		Subjective:   "Patient reports intermittent headaches for two weeks.",
		Objective:    "BP 120/80, afebrile, neuro exam unremarkable.",
		Assessment:   "Tension-type headache.",
		Plan:         "Hydration, OTC analgesics, follow up in two weeks.",
		UserApproved: true,
		GeneratedAt:  time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC),
	}

	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header: %q", data[:8])
	}
}

func TestRenderEmptySections(t *testing.T) {
	data, err := Render(SoapDocument{PatientName: "John Doe", VisitDate: time.Now()})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty output")
	}
}

func TestFileNameSlug(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"simple", []string{"Jane Roe", "2026-03-12"}, "jane-roe-2026-03-12.pdf"},
		{"punctuation collapsed", []string{"O'Brien, Pat"}, "o-brien-pat.pdf"},
		{"empty falls back", []string{"", "!!!"}, "soap-note.pdf"},
		{"trailing separator trimmed", []string{"note-"}, "note.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileNameSlug(tt.parts...); got != tt.want {
				t.Fatalf("FileNameSlug(%v) = %q, want %q", tt.parts, got, tt.want)
			}
		})
	}
}
