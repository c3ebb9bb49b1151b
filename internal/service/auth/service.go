package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
)

type Service struct {
	patientRepo  repository.PatientRepository
	hospitalRepo repository.HospitalRepository
	doctorRepo   repository.DoctorRepository
	catalogSvc   *catalog.Service
	jwtSvc       auth.JWTService
	hasher       security.PasswordHasher
}

func NewService(
	patientRepo repository.PatientRepository,
	hospitalRepo repository.HospitalRepository,
	doctorRepo repository.DoctorRepository,
	catalogSvc *catalog.Service,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		patientRepo:  patientRepo,
		hospitalRepo: hospitalRepo,
		doctorRepo:   doctorRepo,
		catalogSvc:   catalogSvc,
		jwtSvc:       jwtSvc,
		hasher:       hasher,
	}
}

func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	if existing, _ := s.patientRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password", err)
	}

	patient := &model.Patient{
		Base:          model.Base{ID: uuid.New()},
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		PasswordHash:  hash,
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) RegisterHospital(ctx context.Context, req *model.RegisterHospitalRequest) (*model.Hospital, error) {
	if existing, _ := s.hospitalRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password", err)
	}

	hospital := &model.Hospital{
		Base:            model.Base{ID: uuid.New()},
		HospitalName:    req.HospitalName,
		Email:           req.Email,
		PasswordHash:    hash,
		Specializations: []string{},
	}
	if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
		return nil, fmt.Errorf("failed to create hospital: %w", err)
	}

	// The new hospital must show up in the browse listings right away.
	s.catalogSvc.InvalidateListings()

	return hospital, nil
}

func (s *Service) LoginPatient(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}
	if err := s.hasher.Compare(patient.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}

	token, err := s.jwtSvc.GenerateToken(patient.ID, model.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.LoginResponse{
		Token:   token,
		Patient: patient.Profile(),
	}, nil
}

func (s *Service) LoginHospital(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	hospital, err := s.hospitalRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}
	if err := s.hasher.Compare(hospital.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}

	token, err := s.jwtSvc.GenerateToken(hospital.ID, model.RoleHospital)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.LoginResponse{
		Token:    token,
		Hospital: hospital.Profile(),
	}, nil
}

func (s *Service) LoginDoctor(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	doctor, err := s.doctorRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}
	if err := s.hasher.Compare(doctor.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", err)
	}

	token, err := s.jwtSvc.GenerateToken(doctor.ID, model.RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	profile := doctor.Profile()
	if hospital, err := s.hospitalRepo.Get(ctx, doctor.HospitalID); err == nil {
		profile.Hospital = &model.Ref{ID: hospital.ID, Name: hospital.HospitalName}
	}

	return &model.LoginResponse{
		Token:  token,
		Doctor: profile,
	}, nil
}

// ValidateToken decodes a bearer credential into the authenticated
// account id and role. The caller trusts the returned id.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token", err)
	}
	return claims, nil
}
