package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

// SoapDocument is everything the renderer needs; it deliberately knows
// nothing about entities or persistence.
type SoapDocument struct {
	PatientName string
	VisitDate   time.Time
	NoteId      string

	Subjective string
	Objective  string
	Assessment string
	Plan       string

	UserApproved bool
	GeneratedAt  time.Time
}

// Render produces the printable SOAP note as PDF bytes.
func Render(doc SoapDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "SOAP Note", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	header := fmt.Sprintf("Patient: %s    Visit: %s", doc.PatientName, doc.VisitDate.Format("2006-01-02"))
	pdf.CellFormat(0, 6, header, "", 1, "L", false, 0, "")
	if doc.NoteId != "" {
		pdf.CellFormat(0, 6, "Note: "+doc.NoteId, "", 1, "L", false, 0, "")
	}
	status := "Pending review"
	if doc.UserApproved {
		status = "Approved by clinician"
	}
	pdf.CellFormat(0, 6, "Status: "+status, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	sections := []struct {
		title string
		body  string
	}{
		{"Subjective", doc.Subjective},
		{"Objective", doc.Objective},
		{"Assessment", doc.Assessment},
		{"Plan", doc.Plan},
	}
	for _, section := range sections {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, section.title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		body := section.body
		if strings.TrimSpace(body) == "" {
			body = "(empty)"
		}
		pdf.MultiCell(0, 5, body, "", "L", false)
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "I", 8)
	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	pdf.CellFormat(0, 5, "Generated "+generated.Format(time.RFC1123), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileNameSlug builds a safe download filename from free-form parts.
func FileNameSlug(parts ...string) string {
	joined := strings.Join(parts, "-")
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(joined) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "soap-note"
	}
	return slug + ".pdf"
}
