package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

const (
	hospitalListKey    = "hospitals"
	specializationsKey = "specializations"
	cacheTTL           = 30 * time.Second
	cacheCleanupEvery  = 5 * time.Minute
)

// Service exposes the browse side of the catalog: hospitals, the
// specializations they offer, and the doctors attached to them. Listings
// are cached briefly since the catalog changes far less often than it is
// read.
type Service struct {
	hospitalRepo repository.HospitalRepository
	doctorRepo   repository.DoctorRepository
	cache        *cache.Cache
}

func NewService(hospitalRepo repository.HospitalRepository, doctorRepo repository.DoctorRepository) *Service {
	return &Service{
		hospitalRepo: hospitalRepo,
		doctorRepo:   doctorRepo,
		cache:        cache.New(cacheTTL, cacheCleanupEvery),
	}
}

func (s *Service) ListHospitals(ctx context.Context) ([]*model.HospitalProfile, error) {
	if cached, ok := s.cache.Get(hospitalListKey); ok {
		return cached.([]*model.HospitalProfile), nil
	}

	hospitals, err := s.hospitalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}

	profiles := make([]*model.HospitalProfile, 0, len(hospitals))
	for _, h := range hospitals {
		profiles = append(profiles, h.Profile())
	}

	s.cache.Set(hospitalListKey, profiles, cache.DefaultExpiration)
	return profiles, nil
}

// ListSpecializations returns the distinct specialization labels offered
// across all hospitals, sorted.
func (s *Service) ListSpecializations(ctx context.Context) ([]string, error) {
	if cached, ok := s.cache.Get(specializationsKey); ok {
		return cached.([]string), nil
	}

	hospitals, err := s.hospitalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}

	seen := make(map[string]struct{})
	var labels []string
	for _, h := range hospitals {
		for _, label := range h.Specializations {
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	s.cache.Set(specializationsKey, labels, cache.DefaultExpiration)
	return labels, nil
}

// ListHospitalsBySpecialization returns the hospitals offering the given
// specialization.
func (s *Service) ListHospitalsBySpecialization(ctx context.Context, specialization string) ([]*model.HospitalProfile, error) {
	hospitals, err := s.hospitalRepo.ListBySpecialization(ctx, specialization)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals by specialization: %w", err)
	}

	profiles := make([]*model.HospitalProfile, 0, len(hospitals))
	for _, h := range hospitals {
		profiles = append(profiles, h.Profile())
	}
	return profiles, nil
}

// HospitalSpecializations returns the specialization labels one hospital
// offers.
func (s *Service) HospitalSpecializations(ctx context.Context, hospitalID uuid.UUID) ([]string, error) {
	hospital, err := s.hospitalRepo.Get(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	return hospital.Specializations, nil
}

// ListDoctors returns the doctors attached to a hospital, optionally
// narrowed to one specialization.
func (s *Service) ListDoctors(ctx context.Context, hospitalID uuid.UUID, specialization string) ([]*model.DoctorProfile, error) {
	if _, err := s.hospitalRepo.Get(ctx, hospitalID); err != nil {
		return nil, err
	}

	doctors, err := s.doctorRepo.ListByHospital(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	profiles := make([]*model.DoctorProfile, 0, len(doctors))
	for _, d := range doctors {
		if specialization != "" && d.Specialization != specialization {
			continue
		}
		profiles = append(profiles, d.Profile())
	}
	return profiles, nil
}

// ValidateBooking checks the catalog side of a booking request: the
// hospital exists, it offers the requested specialization, and the
// doctor (when named) belongs to that hospital and practices it.
func (s *Service) ValidateBooking(ctx context.Context, hospitalID uuid.UUID, doctorID *uuid.UUID, specialization string) (*model.Hospital, error) {
	hospital, err := s.hospitalRepo.Get(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	// Existence checks come before catalog validation, so a booking
	// naming an unknown doctor reads as not-found even when the
	// specialization is also wrong.
	var doctor *model.Doctor
	if doctorID != nil {
		doctor, err = s.doctorRepo.Get(ctx, *doctorID)
		if err != nil {
			return nil, err
		}
	}

	if !hospital.HasSpecialization(specialization) {
		return nil, apperrors.Validation("hospital does not offer this specialization", nil)
	}
	if doctor != nil {
		if doctor.HospitalID != hospitalID {
			return nil, apperrors.Validation("doctor does not belong to this hospital", nil)
		}
		if doctor.Specialization != specialization {
			return nil, apperrors.Validation("doctor does not practice this specialization", nil)
		}
	}

	return hospital, nil
}

// InvalidateListings drops the cached catalog listings. Called after a
// mutation that changes what the browse endpoints return.
func (s *Service) InvalidateListings() {
	s.cache.Delete(hospitalListKey)
	s.cache.Delete(specializationsKey)
}
