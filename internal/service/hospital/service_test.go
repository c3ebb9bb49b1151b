package hospital

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
	"github.com/jwalitptl/booking-api/internal/service/event"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/security"
)

func newFixture(t *testing.T) (*Service, *catalog.Service, *memory.OutboxRepository, *model.Hospital) {
	t.Helper()
	hospitalRepo := memory.NewHospitalRepository()
	doctorRepo := memory.NewDoctorRepository()
	outboxRepo := memory.NewOutboxRepository()

	quiet := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	catalogSvc := catalog.NewService(hospitalRepo, doctorRepo)
	eventSvc := event.NewService(outboxRepo, quiet)
	svc := NewService(hospitalRepo, doctorRepo, catalogSvc, security.NewBcryptHasher(4), eventSvc, quiet)

	hospital := &model.Hospital{
		Base:            model.Base{ID: uuid.New()},
		HospitalName:    "City General",
		Email:           "admin@citygeneral.example.com",
		PasswordHash:    "x",
		Specializations: []string{"Cardiology"},
	}
	require.NoError(t, hospitalRepo.Create(context.Background(), hospital))

	return svc, catalogSvc, outboxRepo, hospital
}

func TestAddDoctor_ExtendsSpecializationSet(t *testing.T) {
	svc, _, _, hospital := newFixture(t)
	ctx := context.Background()

	doctor, err := svc.AddDoctor(ctx, hospital.ID, &model.AddDoctorRequest{
		Name:           "Dr. Shepherd",
		Email:          "shepherd@citygeneral.example.com",
		Password:       "supersecret",
		Specialization: "Neurology",
	})
	require.NoError(t, err)
	assert.Equal(t, hospital.ID, doctor.HospitalID)

	stored, err := svc.Specializations(ctx, hospital.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Cardiology", "Neurology"}, stored)
}

func TestAddDoctor_ExistingSpecializationNotDuplicated(t *testing.T) {
	svc, _, _, hospital := newFixture(t)
	ctx := context.Background()

	_, err := svc.AddDoctor(ctx, hospital.ID, &model.AddDoctorRequest{
		Name:           "Dr. Reed",
		Email:          "reed@citygeneral.example.com",
		Password:       "supersecret",
		Specialization: "Cardiology",
	})
	require.NoError(t, err)

	stored, err := svc.Specializations(ctx, hospital.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiology"}, stored)
}

func TestAddDoctor_RefreshesCachedSpecializations(t *testing.T) {
	svc, catalogSvc, _, hospital := newFixture(t)
	ctx := context.Background()

	// Warm the listing cache with the current offering.
	labels, err := catalogSvc.ListSpecializations(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Cardiology"}, labels)

	_, err = svc.AddDoctor(ctx, hospital.ID, &model.AddDoctorRequest{
		Name:           "Dr. Shepherd",
		Email:          "shepherd@citygeneral.example.com",
		Password:       "supersecret",
		Specialization: "Neurology",
	})
	require.NoError(t, err)

	labels, err = catalogSvc.ListSpecializations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiology", "Neurology"}, labels)
}

func TestAddDoctor_UnknownHospitalNotFound(t *testing.T) {
	svc, _, _, _ := newFixture(t)

	_, err := svc.AddDoctor(context.Background(), uuid.New(), &model.AddDoctorRequest{
		Name:           "Dr. Reed",
		Email:          "reed@example.com",
		Password:       "supersecret",
		Specialization: "Cardiology",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestAddDoctor_DuplicateEmailConflicts(t *testing.T) {
	svc, _, _, hospital := newFixture(t)
	ctx := context.Background()

	req := &model.AddDoctorRequest{
		Name:           "Dr. Reed",
		Email:          "reed@citygeneral.example.com",
		Password:       "supersecret",
		Specialization: "Cardiology",
	}
	_, err := svc.AddDoctor(ctx, hospital.ID, req)
	require.NoError(t, err)

	_, err = svc.AddDoctor(ctx, hospital.ID, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestAddDoctor_EmitsEvent(t *testing.T) {
	svc, _, outboxRepo, hospital := newFixture(t)

	_, err := svc.AddDoctor(context.Background(), hospital.ID, &model.AddDoctorRequest{
		Name:           "Dr. Reed",
		Email:          "reed@citygeneral.example.com",
		Password:       "supersecret",
		Specialization: "Cardiology",
	})
	require.NoError(t, err)

	events := outboxRepo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventDoctorAdded, events[0].EventType)
}
