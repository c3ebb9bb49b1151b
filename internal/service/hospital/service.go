package hospital

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
	"github.com/jwalitptl/booking-api/internal/service/event"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/security"
)

// Service covers the hospital-side management operations: staffing
// doctors and maintaining the specialization set they imply.
type Service struct {
	hospitalRepo repository.HospitalRepository
	doctorRepo   repository.DoctorRepository
	catalogSvc   *catalog.Service
	hasher       security.PasswordHasher
	emitter      event.Emitter
	logger       *logger.Logger
}

func NewService(
	hospitalRepo repository.HospitalRepository,
	doctorRepo repository.DoctorRepository,
	catalogSvc *catalog.Service,
	hasher security.PasswordHasher,
	emitter event.Emitter,
	logger *logger.Logger,
) *Service {
	return &Service{
		hospitalRepo: hospitalRepo,
		doctorRepo:   doctorRepo,
		catalogSvc:   catalogSvc,
		hasher:       hasher,
		emitter:      emitter,
		logger:       logger,
	}
}

// AddDoctor creates a doctor account under the hospital. If the doctor's
// specialization is not yet in the hospital's offering, it is added, so
// the catalog stays consistent with the staff roster.
func (s *Service) AddDoctor(ctx context.Context, hospitalID uuid.UUID, req *model.AddDoctorRequest) (*model.Doctor, error) {
	hospital, err := s.hospitalRepo.Get(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	if existing, _ := s.doctorRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password", err)
	}

	doctor := &model.Doctor{
		Base:           model.Base{ID: uuid.New()},
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   hash,
		Specialization: req.Specialization,
		HospitalID:     hospitalID,
	}
	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	if !hospital.HasSpecialization(req.Specialization) {
		if err := s.hospitalRepo.AddSpecialization(ctx, hospitalID, req.Specialization); err != nil {
			s.logger.Error(err, "failed to extend hospital specializations",
				"hospital_id", hospitalID, "specialization", req.Specialization)
		} else {
			s.catalogSvc.InvalidateListings()
		}
	}

	if err := s.emitter.Emit(ctx, model.EventDoctorAdded, map[string]interface{}{
		"doctor_id":      doctor.ID,
		"hospital_id":    hospitalID,
		"specialization": doctor.Specialization,
	}); err != nil {
		s.logger.Error(err, "failed to emit doctor added event", "doctor_id", doctor.ID)
	}

	return doctor, nil
}

// ListDoctors returns the hospital's staff roster.
func (s *Service) ListDoctors(ctx context.Context, hospitalID uuid.UUID) ([]*model.DoctorProfile, error) {
	if _, err := s.hospitalRepo.Get(ctx, hospitalID); err != nil {
		return nil, err
	}

	doctors, err := s.doctorRepo.ListByHospital(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	profiles := make([]*model.DoctorProfile, 0, len(doctors))
	for _, d := range doctors {
		profiles = append(profiles, d.Profile())
	}
	return profiles, nil
}

// Specializations returns the hospital's current offering.
func (s *Service) Specializations(ctx context.Context, hospitalID uuid.UUID) ([]string, error) {
	hospital, err := s.hospitalRepo.Get(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	return hospital.Specializations, nil
}
