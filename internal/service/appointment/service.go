package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
	"github.com/jwalitptl/booking-api/internal/service/event"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// Service implements the appointment lifecycle: availability queries,
// booking, the hospital's approve/reject decision, and the per-role
// history projections.
type Service struct {
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	hospitalRepo    repository.HospitalRepository
	doctorRepo      repository.DoctorRepository
	catalogSvc      *catalog.Service
	emitter         event.Emitter
	metrics         *metrics.Metrics
	logger          *logger.Logger
}

func NewService(
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	hospitalRepo repository.HospitalRepository,
	doctorRepo repository.DoctorRepository,
	catalogSvc *catalog.Service,
	emitter event.Emitter,
	m *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		hospitalRepo:    hospitalRepo,
		doctorRepo:      doctorRepo,
		catalogSvc:      catalogSvc,
		emitter:         emitter,
		metrics:         m,
		logger:          logger,
	}
}

// AvailableSlots returns the bookable times left for the hospital (and
// doctor, when given) on the date, in display order. A slot is gone while
// a pending or approved appointment holds it; rejected ones release it.
func (s *Service) AvailableSlots(ctx context.Context, hospitalID uuid.UUID, doctorID *uuid.UUID, date time.Time) ([]string, error) {
	start := time.Now()
	defer func() {
		s.metrics.SlotQueries.Inc()
		s.metrics.SlotQueryDuration.Observe(time.Since(start).Seconds())
	}()

	if _, err := s.hospitalRepo.Get(ctx, hospitalID); err != nil {
		return nil, err
	}
	if doctorID != nil {
		doctor, err := s.doctorRepo.Get(ctx, *doctorID)
		if err != nil {
			return nil, err
		}
		if doctor.HospitalID != hospitalID {
			return nil, apperrors.Validation("doctor does not belong to this hospital", nil)
		}
	}

	open, err := s.appointmentRepo.ListOpen(ctx, hospitalID, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open appointments: %w", err)
	}

	taken := make(map[string]struct{}, len(open))
	for _, a := range open {
		taken[a.TimeSlot] = struct{}{}
	}

	available := make([]string, 0, len(model.TimeSlots))
	for _, slot := range model.TimeSlots {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}
	return available, nil
}

// Book creates a pending appointment for the patient. The slot is held
// from this moment; the hospital's later rejection releases it. A
// concurrent booking of the same slot loses with a conflict error, which
// the storage layer guarantees even when both requests pass the
// availability check.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		return nil, apperrors.Validation("invalid hospital id", err)
	}
	var doctorID *uuid.UUID
	if req.DoctorID != "" {
		id, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return nil, apperrors.Validation("invalid doctor id", err)
		}
		doctorID = &id
	}

	hospital, err := s.catalogSvc.ValidateBooking(ctx, hospitalID, doctorID, req.Specialization)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(model.DateFormat, req.Date)
	if err != nil {
		return nil, apperrors.Validation("invalid date", err)
	}
	if !model.IsValidTimeSlot(req.Time) {
		return nil, apperrors.Validation("invalid time slot", nil)
	}

	taken, err := s.appointmentRepo.SlotTaken(ctx, hospitalID, doctorID, date, req.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	if taken {
		s.metrics.BookingConflicts.Inc()
		return nil, apperrors.Conflict("time slot already booked", nil)
	}

	appointment := &model.Appointment{
		ID:             uuid.New(),
		PatientID:      patientID,
		HospitalID:     hospitalID,
		DoctorID:       doctorID,
		PatientName:    req.PatientName,
		Problem:        req.Problem,
		Specialization: req.Specialization,
		Date:           date,
		TimeSlot:       req.Time,
		Status:         model.AppointmentStatusPending,
	}
	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		if apperrors.IsCode(err, apperrors.ErrConflict) {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	s.metrics.BookingsTotal.Inc()
	s.emitAppointmentEvent(ctx, model.EventAppointmentBooked, appointment, patient, hospital)

	s.logger.WithFields(map[string]interface{}{
		"appointment_id": appointment.ID,
		"hospital_id":    hospitalID,
		"date":           req.Date,
		"time":           req.Time,
	}).Info("appointment booked")

	return appointment, nil
}

// Decide records the hospital's decision on a pending appointment. Only
// the hospital the appointment was booked with may decide, and only
// while the appointment is still pending.
func (s *Service) Decide(ctx context.Context, hospitalID, appointmentID uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if status != model.AppointmentStatusApproved && status != model.AppointmentStatusRejected {
		return nil, apperrors.Validation("status must be approved or rejected", nil)
	}

	appointment, err := s.appointmentRepo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.HospitalID != hospitalID {
		return nil, apperrors.Forbidden("access denied")
	}
	if appointment.Status.Resolved() {
		return nil, apperrors.Validation("appointment already resolved", nil)
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, status); err != nil {
		return nil, err
	}
	appointment.Status = status

	s.metrics.DecisionsTotal.WithLabelValues(string(status)).Inc()

	eventType := model.EventAppointmentApproved
	if status == model.AppointmentStatusRejected {
		eventType = model.EventAppointmentRejected
	}
	patient, perr := s.patientRepo.Get(ctx, appointment.PatientID)
	if perr != nil {
		patient = nil
	}
	hospital, herr := s.hospitalRepo.Get(ctx, hospitalID)
	if herr != nil {
		hospital = nil
	}
	s.emitAppointmentEvent(ctx, eventType, appointment, patient, hospital)

	s.logger.WithFields(map[string]interface{}{
		"appointment_id": appointmentID,
		"status":         status,
	}).Info("appointment decided")

	return appointment, nil
}

// PatientHistory returns the patient's appointments, newest first, with
// hospital and doctor names joined in. Appointments whose hospital no
// longer resolves are skipped rather than failing the whole listing.
func (s *Service) PatientHistory(ctx context.Context, patientID uuid.UUID) ([]*model.PatientAppointmentView, error) {
	appointments, err := s.appointmentRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	views := make([]*model.PatientAppointmentView, 0, len(appointments))
	for _, a := range appointments {
		view, err := s.patientView(ctx, a)
		if err != nil {
			s.logger.WithFields(map[string]interface{}{
				"appointment_id": a.ID,
			}).Debug("skipping appointment with dangling reference")
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

// PatientAppointment returns one appointment's projection, scoped to the
// owning patient.
func (s *Service) PatientAppointment(ctx context.Context, patientID, appointmentID uuid.UUID) (*model.PatientAppointmentView, error) {
	appointment, err := s.appointmentRepo.GetForPatient(ctx, appointmentID, patientID)
	if err != nil {
		return nil, err
	}
	return s.patientView(ctx, appointment)
}

// PendingForHospital returns the hospital's pending appointments for the
// approval dashboard. Entries whose patient record no longer resolves
// are skipped.
func (s *Service) PendingForHospital(ctx context.Context, hospitalID uuid.UUID) ([]*model.PendingAppointmentView, error) {
	appointments, err := s.appointmentRepo.ListByHospitalAndStatus(ctx, hospitalID, model.AppointmentStatusPending)
	if err != nil {
		return nil, err
	}

	views := make([]*model.PendingAppointmentView, 0, len(appointments))
	for _, a := range appointments {
		patient, err := s.patientRepo.Get(ctx, a.PatientID)
		if err != nil {
			s.logger.WithFields(map[string]interface{}{
				"appointment_id": a.ID,
				"patient_id":     a.PatientID,
			}).Debug("skipping appointment with dangling patient")
			continue
		}

		view := &model.PendingAppointmentView{
			AppointmentID:  a.ID,
			Patient:        model.Ref{ID: patient.ID, Name: patient.FullName},
			PatientEmail:   patient.Email,
			Problem:        a.Problem,
			Specialization: a.Specialization,
			Date:           a.Date.Format(model.DateFormat),
			Time:           a.TimeSlot,
			Status:         a.Status,
		}
		if a.DoctorID != nil {
			if doctor, err := s.doctorRepo.Get(ctx, *a.DoctorID); err == nil {
				view.Doctor = &model.Ref{ID: doctor.ID, Name: doctor.Name}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// DoctorAppointments returns the doctor's schedule, soonest first, using
// the dashboard's display status vocabulary.
func (s *Service) DoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]*model.DoctorAppointmentView, error) {
	appointments, err := s.appointmentRepo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	views := make([]*model.DoctorAppointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, &model.DoctorAppointmentView{
			AppointmentID: a.ID,
			PatientName:   a.PatientName,
			Problem:       a.Problem,
			Date:          a.Date.Format(model.DateFormat),
			Time:          a.TimeSlot,
			Status:        a.Status.Display(),
		})
	}
	return views, nil
}

func (s *Service) patientView(ctx context.Context, a *model.Appointment) (*model.PatientAppointmentView, error) {
	hospital, err := s.hospitalRepo.Get(ctx, a.HospitalID)
	if err != nil {
		return nil, err
	}

	view := &model.PatientAppointmentView{
		AppointmentID:  a.ID,
		PatientName:    a.PatientName,
		Problem:        a.Problem,
		Specialization: a.Specialization,
		Hospital:       model.Ref{ID: hospital.ID, Name: hospital.HospitalName},
		Date:           a.Date.Format(model.DateFormat),
		Time:           a.TimeSlot,
		Status:         a.Status,
	}
	if a.DoctorID != nil {
		if doctor, err := s.doctorRepo.Get(ctx, *a.DoctorID); err == nil {
			view.Doctor = &model.Ref{ID: doctor.ID, Name: doctor.Name}
		}
	}
	return view, nil
}

func (s *Service) emitAppointmentEvent(ctx context.Context, eventType string, a *model.Appointment, patient *model.Patient, hospital *model.Hospital) {
	payload := &model.AppointmentEvent{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		PatientName:   a.PatientName,
		Date:          a.Date.Format(model.DateFormat),
		Time:          a.TimeSlot,
		Status:        a.Status,
	}
	if patient != nil {
		payload.PatientEmail = patient.Email
	}
	if hospital != nil {
		payload.HospitalName = hospital.HospitalName
	}

	if err := s.emitter.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to emit appointment event",
			"appointment_id", a.ID, "event_type", eventType)
	}
}
