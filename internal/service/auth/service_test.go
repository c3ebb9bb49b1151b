package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/security"
)

func newService(t *testing.T) (*Service, *catalog.Service, *memory.HospitalRepository, *memory.DoctorRepository) {
	t.Helper()
	patientRepo := memory.NewPatientRepository()
	hospitalRepo := memory.NewHospitalRepository()
	doctorRepo := memory.NewDoctorRepository()
	catalogSvc := catalog.NewService(hospitalRepo, doctorRepo)
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	hasher := security.NewBcryptHasher(4)
	svc := NewService(patientRepo, hospitalRepo, doctorRepo, catalogSvc, jwtSvc, hasher)
	return svc, catalogSvc, hospitalRepo, doctorRepo
}

func TestRegisterAndLoginPatient(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	patient, err := svc.RegisterPatient(ctx, &model.RegisterPatientRequest{
		FullName:      "John Carter",
		ContactNumber: "555-0100",
		Email:         "john@example.com",
		Password:      "supersecret",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, patient.ID)
	assert.NotEqual(t, "supersecret", patient.PasswordHash)

	resp, err := svc.LoginPatient(ctx, "john@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.Patient)

	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, claims.AccountID)
	assert.Equal(t, model.RolePatient, claims.Role)
}

func TestRegisterPatient_DuplicateEmailConflicts(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	req := &model.RegisterPatientRequest{
		FullName:      "John Carter",
		ContactNumber: "555-0100",
		Email:         "john@example.com",
		Password:      "supersecret",
	}
	_, err := svc.RegisterPatient(ctx, req)
	require.NoError(t, err)

	_, err = svc.RegisterPatient(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestLoginPatient_WrongPasswordUnauthorized(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.RegisterPatient(ctx, &model.RegisterPatientRequest{
		FullName:      "John Carter",
		ContactNumber: "555-0100",
		Email:         "john@example.com",
		Password:      "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.LoginPatient(ctx, "john@example.com", "not-the-password")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))

	_, err = svc.LoginPatient(ctx, "nobody@example.com", "supersecret")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthorized))
}

func TestRegisterHospitalStartsWithEmptySpecializations(t *testing.T) {
	svc, _, hospitalRepo, _ := newService(t)
	ctx := context.Background()

	hospital, err := svc.RegisterHospital(ctx, &model.RegisterHospitalRequest{
		HospitalName: "City General",
		Email:        "admin@citygeneral.example.com",
		Password:     "supersecret",
	})
	require.NoError(t, err)

	stored, err := hospitalRepo.Get(ctx, hospital.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Specializations)

	resp, err := svc.LoginHospital(ctx, "admin@citygeneral.example.com", "supersecret")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleHospital, claims.Role)
}

func TestRegisterHospital_RefreshesCachedListings(t *testing.T) {
	svc, catalogSvc, _, _ := newService(t)
	ctx := context.Background()

	// Warm the listing cache before anything exists.
	hospitals, err := catalogSvc.ListHospitals(ctx)
	require.NoError(t, err)
	require.Empty(t, hospitals)

	_, err = svc.RegisterHospital(ctx, &model.RegisterHospitalRequest{
		HospitalName: "City General",
		Email:        "admin@citygeneral.example.com",
		Password:     "supersecret",
	})
	require.NoError(t, err)

	hospitals, err = catalogSvc.ListHospitals(ctx)
	require.NoError(t, err)
	require.Len(t, hospitals, 1)
	assert.Equal(t, "City General", hospitals[0].HospitalName)
}

func TestLoginDoctor_IncludesHospitalRef(t *testing.T) {
	svc, _, hospitalRepo, doctorRepo := newService(t)
	ctx := context.Background()

	hospital := &model.Hospital{
		Base:            model.Base{ID: uuid.New()},
		HospitalName:    "City General",
		Email:           "admin@citygeneral.example.com",
		PasswordHash:    "x",
		Specializations: []string{"Cardiology"},
	}
	require.NoError(t, hospitalRepo.Create(ctx, hospital))

	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash("supersecret")
	require.NoError(t, err)

	doctor := &model.Doctor{
		Base:           model.Base{ID: uuid.New()},
		Name:           "Dr. Reed",
		Email:          "reed@citygeneral.example.com",
		PasswordHash:   hash,
		Specialization: "Cardiology",
		HospitalID:     hospital.ID,
	}
	require.NoError(t, doctorRepo.Create(ctx, doctor))

	resp, err := svc.LoginDoctor(ctx, "reed@citygeneral.example.com", "supersecret")
	require.NoError(t, err)

	profile, ok := resp.Doctor.(*model.DoctorProfile)
	require.True(t, ok)
	require.NotNil(t, profile.Hospital)
	assert.Equal(t, "City General", profile.Hospital.Name)

	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, claims.Role)
}
