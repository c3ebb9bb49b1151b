// Package memory provides in-memory repository implementations backing
// the service tests. Semantics mirror the postgres package, including
// the slot uniqueness guard enforced there by a partial unique index.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type PatientRepository struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*model.Patient
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.Email == patient.Email {
			return apperrors.Conflict("email already registered", nil)
		}
	}
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt
	cp := *patient
	r.patients[patient.ID] = &cp
	return nil
}

func (r *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *PatientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (r *PatientRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.patients, id)
}

type HospitalRepository struct {
	mu        sync.RWMutex
	hospitals map[uuid.UUID]*model.Hospital
}

func NewHospitalRepository() *HospitalRepository {
	return &HospitalRepository{hospitals: make(map[uuid.UUID]*model.Hospital)}
}

func (r *HospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hospitals {
		if h.Email == hospital.Email {
			return apperrors.Conflict("email already registered", nil)
		}
	}
	hospital.CreatedAt = time.Now()
	hospital.UpdatedAt = hospital.CreatedAt
	cp := *hospital
	cp.Specializations = append([]string(nil), hospital.Specializations...)
	r.hospitals[hospital.ID] = &cp
	return nil
}

func (r *HospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hospitals[id]
	if !ok {
		return nil, apperrors.NotFound("hospital", nil)
	}
	cp := *h
	cp.Specializations = append([]string(nil), h.Specializations...)
	return &cp, nil
}

func (r *HospitalRepository) GetByEmail(ctx context.Context, email string) (*model.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.hospitals {
		if h.Email == email {
			cp := *h
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("hospital", nil)
}

func (r *HospitalRepository) List(ctx context.Context) ([]*model.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Hospital, 0, len(r.hospitals))
	for _, h := range r.hospitals {
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HospitalName < out[j].HospitalName })
	return out, nil
}

func (r *HospitalRepository) ListBySpecialization(ctx context.Context, specialization string) ([]*model.Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Hospital
	for _, h := range r.hospitals {
		if h.HasSpecialization(specialization) {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HospitalName < out[j].HospitalName })
	return out, nil
}

func (r *HospitalRepository) AddSpecialization(ctx context.Context, hospitalID uuid.UUID, specialization string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hospitals[hospitalID]
	if !ok {
		return apperrors.NotFound("hospital", nil)
	}
	if !h.HasSpecialization(specialization) {
		h.Specializations = append(h.Specializations, specialization)
	}
	return nil
}

type DoctorRepository struct {
	mu      sync.RWMutex
	doctors map[uuid.UUID]*model.Doctor
}

func NewDoctorRepository() *DoctorRepository {
	return &DoctorRepository{doctors: make(map[uuid.UUID]*model.Doctor)}
}

func (r *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		if d.Email == doctor.Email {
			return apperrors.Conflict("email already registered", nil)
		}
	}
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt
	cp := *doctor
	r.doctors[doctor.ID] = &cp
	return nil
}

func (r *DoctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	cp := *d
	return &cp, nil
}

func (r *DoctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.doctors {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("doctor", nil)
}

func (r *DoctorRepository) ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Doctor
	for _, d := range r.doctors {
		if d.HospitalID == hospitalID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type AppointmentRepository struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
	order        []uuid.UUID
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func slotKey(hospitalID uuid.UUID, doctorID *uuid.UUID, date time.Time, timeSlot string) string {
	d := uuid.Nil
	if doctorID != nil {
		d = *doctorID
	}
	return hospitalID.String() + "|" + d.String() + "|" + date.Format(model.DateFormat) + "|" + timeSlot
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := slotKey(appointment.HospitalID, appointment.DoctorID, appointment.Date, appointment.TimeSlot)
	for _, a := range r.appointments {
		if a.Status == model.AppointmentStatusRejected {
			continue
		}
		if slotKey(a.HospitalID, a.DoctorID, a.Date, a.TimeSlot) == key {
			return apperrors.Conflict("time slot already booked", nil)
		}
	}
	appointment.CreatedAt = time.Now()
	cp := *appointment
	r.appointments[appointment.ID] = &cp
	r.order = append(r.order, appointment.ID)
	return nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	cp := *a
	return &cp, nil
}

func (r *AppointmentRepository) GetForPatient(ctx context.Context, id, patientID uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.PatientID != patientID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	cp := *a
	return &cp, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	a.Status = status
	return nil
}

func (r *AppointmentRepository) ListOpen(ctx context.Context, hospitalID uuid.UUID, doctorID *uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, id := range r.order {
		a := r.appointments[id]
		if a.HospitalID != hospitalID {
			continue
		}
		if !sameDoctor(a.DoctorID, doctorID) {
			continue
		}
		if !a.Date.Equal(date) {
			continue
		}
		if a.Status != model.AppointmentStatusPending && a.Status != model.AppointmentStatusApproved {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *AppointmentRepository) SlotTaken(ctx context.Context, hospitalID uuid.UUID, doctorID *uuid.UUID, date time.Time, timeSlot string) (bool, error) {
	open, err := r.ListOpen(ctx, hospitalID, doctorID, date)
	if err != nil {
		return false, err
	}
	for _, a := range open {
		if a.TimeSlot == timeSlot {
			return true, nil
		}
	}
	return false, nil
}

func (r *AppointmentRepository) ListByHospitalAndStatus(ctx context.Context, hospitalID uuid.UUID, status model.AppointmentStatus) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, id := range r.order {
		a := r.appointments[id]
		if a.HospitalID == hospitalID && a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for i := len(r.order) - 1; i >= 0; i-- {
		a := r.appointments[r.order[i]]
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, id := range r.order {
		a := r.appointments[id]
		if a.DoctorID != nil && *a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type OutboxRepository struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

func (r *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.OutboxEvent
	for _, e := range r.events {
		if e.Status != model.OutboxStatusPending {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errorMessage
			now := time.Now()
			if status == model.OutboxStatusProcessed {
				e.ProcessedAt = &now
			}
			e.UpdatedAt = now
			return nil
		}
	}
	return apperrors.NotFound("outbox event", nil)
}

func (r *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*model.OutboxEvent
	var deleted int64
	for _, e := range r.events {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return deleted, nil
}

// Events returns a snapshot of everything emitted, for assertions.
func (r *OutboxRepository) Events() []*model.OutboxEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.OutboxEvent, 0, len(r.events))
	for _, e := range r.events {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

func sameDoctor(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

var (
	_ repository.PatientRepository     = (*PatientRepository)(nil)
	_ repository.HospitalRepository    = (*HospitalRepository)(nil)
	_ repository.DoctorRepository      = (*DoctorRepository)(nil)
	_ repository.AppointmentRepository = (*AppointmentRepository)(nil)
	_ repository.OutboxRepository      = (*OutboxRepository)(nil)
)
