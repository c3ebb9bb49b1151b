package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "pending"
	AppointmentStatusApproved AppointmentStatus = "approved"
	AppointmentStatusRejected AppointmentStatus = "rejected"
)

// Resolved reports whether the status is terminal. Approved and rejected
// appointments never transition again.
func (s AppointmentStatus) Resolved() bool {
	return s == AppointmentStatusApproved || s == AppointmentStatusRejected
}

// Display maps the internal status vocabulary to the capitalized labels
// the dashboards render. The API itself only speaks the lowercase forms.
func (s AppointmentStatus) Display() string {
	switch s {
	case AppointmentStatusPending:
		return "Pending"
	case AppointmentStatusApproved:
		return "Accepted"
	case AppointmentStatusRejected:
		return "Rejected"
	}
	return string(s)
}

// OpenStatuses are the statuses that hold a slot: a pending request holds
// it provisionally until the hospital decides, an approved one holds it
// for good. Rejected appointments release their slot.
var OpenStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusApproved}

// TimeSlots is the fixed set of bookable times for a day, in display order.
var TimeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
}

// IsValidTimeSlot reports whether label is one of the nine bookable times.
func IsValidTimeSlot(label string) bool {
	for _, s := range TimeSlots {
		if s == label {
			return true
		}
	}
	return false
}

// DateFormat is the wire format for appointment dates.
const DateFormat = "2006-01-02"

type Appointment struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	HospitalID uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	DoctorID   *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`

	// PatientName and Specialization are snapshots taken at booking time.
	// They are not kept in sync with later profile or catalog edits.
	PatientName    string `db:"patient_name" json:"patient_name"`
	Problem        string `db:"problem" json:"problem"`
	Specialization string `db:"specialization" json:"specialization"`

	Date      time.Time         `db:"date" json:"date"`
	TimeSlot  string            `db:"time_slot" json:"time"`
	Status    AppointmentStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

type BookAppointmentRequest struct {
	HospitalID     string `json:"hospital_id" binding:"required,uuid"`
	DoctorID       string `json:"doctor_id" binding:"omitempty,uuid"`
	Specialization string `json:"specialization" binding:"required"`
	Date           string `json:"date" binding:"required,datetime=2006-01-02"`
	Time           string `json:"time" binding:"required,timeslot"`
	Problem        string `json:"problem" binding:"required"`
	PatientName    string `json:"patient_name" binding:"required"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=approved rejected"`
}

// PatientAppointmentView is the patient-facing projection with the
// hospital (and doctor, when booked) display names joined in.
type PatientAppointmentView struct {
	AppointmentID  uuid.UUID         `json:"appointment_id"`
	PatientName    string            `json:"patient_name"`
	Problem        string            `json:"problem"`
	Specialization string            `json:"specialization"`
	Hospital       Ref               `json:"hospital"`
	Doctor         *Ref              `json:"doctor,omitempty"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Status         AppointmentStatus `json:"status"`
}

// PendingAppointmentView is the hospital-facing projection used by the
// approval dashboard.
type PendingAppointmentView struct {
	AppointmentID  uuid.UUID         `json:"appointment_id"`
	Patient        Ref               `json:"patient"`
	PatientEmail   string            `json:"patient_email"`
	Problem        string            `json:"problem"`
	Specialization string            `json:"specialization"`
	Doctor         *Ref              `json:"doctor,omitempty"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Status         AppointmentStatus `json:"status"`
}

// DoctorAppointmentView is the doctor-dashboard projection. Status uses
// the display vocabulary ("Accepted"/"Rejected") that dashboard renders.
type DoctorAppointmentView struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Problem       string    `json:"problem"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
}
