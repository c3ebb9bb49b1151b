package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/booking-api/internal/model"
)

func TestComposeAppointmentMail(t *testing.T) {
	event := &model.AppointmentEvent{
		PatientName:  "John Carter",
		HospitalName: "City General",
		Date:         "2026-09-15",
		Time:         "10:00 AM",
	}

	subject, body := composeAppointmentMail(model.EventAppointmentApproved, event)
	assert.Equal(t, "Appointment confirmed", subject)
	assert.Contains(t, body, "City General")
	assert.Contains(t, body, "10:00 AM")

	subject, body = composeAppointmentMail(model.EventAppointmentRejected, event)
	assert.Equal(t, "Appointment declined", subject)
	assert.Contains(t, body, "available again")

	subject, _ = composeAppointmentMail(model.EventDoctorAdded, event)
	assert.Empty(t, subject)
}
