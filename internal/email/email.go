package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/model"
)

// Notifier sends appointment lifecycle mail to patients.
type Notifier interface {
	NotifyAppointment(eventType string, event *model.AppointmentEvent) error
}

type smtpNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(cfg config.SMTPConfig) Notifier {
	return &smtpNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (n *smtpNotifier) NotifyAppointment(eventType string, event *model.AppointmentEvent) error {
	if event.PatientEmail == "" {
		return nil
	}

	subject, body := composeAppointmentMail(eventType, event)
	if subject == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", event.PatientEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func composeAppointmentMail(eventType string, event *model.AppointmentEvent) (subject, body string) {
	switch eventType {
	case model.EventAppointmentBooked:
		subject = "Appointment request received"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour appointment request at %s for %s at %s has been received and is awaiting approval.\n",
			event.PatientName, event.HospitalName, event.Date, event.Time)
	case model.EventAppointmentApproved:
		subject = "Appointment confirmed"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour appointment at %s on %s at %s has been confirmed.\n",
			event.PatientName, event.HospitalName, event.Date, event.Time)
	case model.EventAppointmentRejected:
		subject = "Appointment declined"
		body = fmt.Sprintf(
			"Hi %s,\n\nUnfortunately your appointment request at %s for %s at %s was declined. The slot is available again if you would like to rebook.\n",
			event.PatientName, event.HospitalName, event.Date, event.Time)
	}
	return subject, body
}
