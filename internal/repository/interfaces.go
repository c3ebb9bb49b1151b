package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
	}

	HospitalRepository interface {
		Create(ctx context.Context, hospital *model.Hospital) error
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		GetByEmail(ctx context.Context, email string) (*model.Hospital, error)
		List(ctx context.Context) ([]*model.Hospital, error)
		ListBySpecialization(ctx context.Context, specialization string) ([]*model.Hospital, error)
		AddSpecialization(ctx context.Context, hospitalID uuid.UUID, specialization string) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
		ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]*model.Doctor, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetForPatient(ctx context.Context, id, patientID uuid.UUID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		// ListOpen returns the appointments holding a slot (pending or
		// approved) for the hospital and date, doctor-scoped when doctorID
		// is non-nil.
		ListOpen(ctx context.Context, hospitalID uuid.UUID, doctorID *uuid.UUID, date time.Time) ([]*model.Appointment, error)
		SlotTaken(ctx context.Context, hospitalID uuid.UUID, doctorID *uuid.UUID, date time.Time, timeSlot string) (bool, error)
		ListByHospitalAndStatus(ctx context.Context, hospitalID uuid.UUID, status model.AppointmentStatus) ([]*model.Appointment, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
