package mailer

import (
	"fmt"
	"html"
	"io"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSoapNote(toEmail, patientName, visitDate, fileName string, pdf []byte) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

// SendSoapNote mails a rendered SOAP note as a PDF attachment. The body
// deliberately carries no clinical content; everything sensitive stays inside
// the attachment.
func (s *emailService) SendSoapNote(toEmail, patientName, visitDate, fileName string, pdf []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("SOAP note for %s (%s)", patientName, visitDate))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>SOAP Note Shared With You</h2>
			<p>A SOAP note for patient <strong>%s</strong> (visit on %s) has been shared with you.</p>
			<p>The note is attached as a PDF.</p>
			<p>If you were not expecting this email, please contact the sending clinic.</p>
		</div>
	`, html.EscapeString(patientName), html.EscapeString(visitDate))
	m.SetBody("text/html", body)

	m.Attach(fileName, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	}))

	return s.dialer.DialAndSend(m)
}
