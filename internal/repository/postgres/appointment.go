package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

// A slot is held by at most one open (pending or approved) appointment.
// The appointments table enforces this with a partial unique index over
// (hospital_id, doctor_id, date, time_slot); a unique violation on insert
// is surfaced as the conflict error so concurrent bookings cannot both
// win the read-then-write race.

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, hospital_id, doctor_id, patient_name, problem,
			specialization, date, time_slot, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	appointment.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.HospitalID,
		appointment.DoctorID,
		appointment.PatientName,
		appointment.Problem,
		appointment.Specialization,
		appointment.Date,
		appointment.TimeSlot,
		appointment.Status,
		appointment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("time slot already booked", err)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, doctor_id, patient_name, problem,
		       specialization, date, time_slot, status, created_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetForPatient(ctx context.Context, id, patientID uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, doctor_id, patient_name, problem,
		       specialization, date, time_slot, status, created_at
		FROM appointments
		WHERE id = $1 AND patient_id = $2
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) ListOpen(ctx context.Context, hospitalID uuid.UUID, doctorID *uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, doctor_id, patient_name, problem,
		       specialization, date, time_slot, status, created_at
		FROM appointments
		WHERE hospital_id = $1
		AND (($2::uuid IS NULL AND doctor_id IS NULL) OR doctor_id = $2)
		AND date = $3
		AND status IN ('pending', 'approved')
		ORDER BY time_slot ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, hospitalID, doctorID, date); err != nil {
		return nil, fmt.Errorf("failed to list open appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) SlotTaken(ctx context.Context, hospitalID uuid.UUID, doctorID *uuid.UUID, date time.Time, timeSlot string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE hospital_id = $1
			AND (($2::uuid IS NULL AND doctor_id IS NULL) OR doctor_id = $2)
			AND date = $3
			AND time_slot = $4
			AND status IN ('pending', 'approved')
		)
	`
	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, hospitalID, doctorID, date, timeSlot); err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return taken, nil
}

func (r *appointmentRepository) ListByHospitalAndStatus(ctx context.Context, hospitalID uuid.UUID, status model.AppointmentStatus) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, doctor_id, patient_name, problem,
		       specialization, date, time_slot, status, created_at
		FROM appointments
		WHERE hospital_id = $1 AND status = $2
		ORDER BY date ASC, time_slot ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, hospitalID, status); err != nil {
		return nil, fmt.Errorf("failed to list hospital appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, doctor_id, patient_name, problem,
		       specialization, date, time_slot, status, created_at
		FROM appointments
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, hospital_id, doctor_id, patient_name, problem,
		       specialization, date, time_slot, status, created_at
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY date ASC, time_slot ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}
