package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	appointmentService "github.com/jwalitptl/booking-api/internal/service/appointment"
	authService "github.com/jwalitptl/booking-api/internal/service/auth"
	catalogService "github.com/jwalitptl/booking-api/internal/service/catalog"
	eventService "github.com/jwalitptl/booking-api/internal/service/event"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
)

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func testContext() context.Context {
	return context.Background()
}

type testEnv struct {
	engine       *gin.Engine
	authSvc      *authService.Service
	hospitalRepo *memory.HospitalRepository
	doctorRepo   *memory.DoctorRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handler.RegisterValidators())

	patientRepo := memory.NewPatientRepository()
	hospitalRepo := memory.NewHospitalRepository()
	doctorRepo := memory.NewDoctorRepository()
	appointmentRepo := memory.NewAppointmentRepository()
	outboxRepo := memory.NewOutboxRepository()

	quiet := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	hasher := security.NewBcryptHasher(4)
	catalogSvc := catalogService.NewService(hospitalRepo, doctorRepo)
	authSvc := authService.NewService(patientRepo, hospitalRepo, doctorRepo, catalogSvc, jwtSvc, hasher)
	eventSvc := eventService.NewService(outboxRepo, quiet)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, patientRepo, hospitalRepo, doctorRepo,
		catalogSvc, eventSvc, metrics.New("test"), quiet,
	)

	authMW := middleware.NewAuthMiddleware(authSvc)
	h := NewHandler(authSvc, catalogSvc, appointmentSvc)

	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api, authMW.RequireRole(model.RolePatient, "patientId"))

	return &testEnv{
		engine:       engine,
		authSvc:      authSvc,
		hospitalRepo: hospitalRepo,
		doctorRepo:   doctorRepo,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerAndLogin(t *testing.T, email string) (string, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/patients/register", "", gin.H{
		"full_name":      "John Carter",
		"contact_number": "555-0100",
		"email":          email,
		"password":       "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	w = e.do(t, http.MethodPost, "/api/v1/patients/login", "", gin.H{
		"email":    email,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.Token)

	return reg.Data.ID, login.Data.Token
}

func (e *testEnv) seedHospital(t *testing.T) *model.Hospital {
	t.Helper()
	hospital := &model.Hospital{
		Base:            model.Base{ID: newUUID(t)},
		HospitalName:    "City General",
		Email:           "admin@citygeneral.example.com",
		PasswordHash:    "x",
		Specializations: []string{"Cardiology"},
	}
	require.NoError(t, e.hospitalRepo.Create(testContext(), hospital))
	return hospital
}

func TestBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.seedHospital(t)
	patientID, token := env.registerAndLogin(t, "john@example.com")

	// Booking without a token is rejected.
	w := env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/appointments", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Booking against someone else's path id is forbidden.
	w = env.do(t, http.MethodPost, "/api/v1/patients/"+newUUID(t).String()+"/appointments", token, gin.H{
		"hospital_id":    hospital.ID.String(),
		"specialization": "Cardiology",
		"date":           "2026-09-15",
		"time":           "10:00 AM",
		"problem":        "chest pain",
		"patient_name":   "John Carter",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A valid booking returns 201 with the appointment id.
	w = env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/appointments", token, gin.H{
		"hospital_id":    hospital.ID.String(),
		"specialization": "Cardiology",
		"date":           "2026-09-15",
		"time":           "10:00 AM",
		"problem":        "chest pain",
		"patient_name":   "John Carter",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var booked struct {
		Data struct {
			AppointmentID string `json:"appointment_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booked))
	assert.NotEmpty(t, booked.Data.AppointmentID)

	// The booked slot disappears from availability.
	w = env.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/patients/timeslots?hospitalId=%s&date=2026-09-15", hospital.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var avail struct {
		Data struct {
			AvailableSlots []string `json:"available_slots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &avail))
	assert.Len(t, avail.Data.AvailableSlots, 8)
	assert.NotContains(t, avail.Data.AvailableSlots, "10:00 AM")

	// History shows the booking as pending.
	w = env.do(t, http.MethodGet, "/api/v1/patients/"+patientID+"/appointments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Data struct {
			Appointments []struct {
				AppointmentID string `json:"appointment_id"`
				Status        string `json:"status"`
			} `json:"appointments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Data.Appointments, 1)
	assert.Equal(t, booked.Data.AppointmentID, history.Data.Appointments[0].AppointmentID)
	assert.Equal(t, "pending", history.Data.Appointments[0].Status)

	// Status lookup for the single appointment.
	w = env.do(t, http.MethodGet,
		"/api/v1/patients/"+patientID+"/appointments/"+booked.Data.AppointmentID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBooking_InvalidTimeSlotRejectedAtBinding(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.seedHospital(t)
	patientID, token := env.registerAndLogin(t, "john@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/appointments", token, gin.H{
		"hospital_id":    hospital.ID.String(),
		"specialization": "Cardiology",
		"date":           "2026-09-15",
		"time":           "09:30 AM",
		"problem":        "chest pain",
		"patient_name":   "John Carter",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooking_DoubleBookingConflicts(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.seedHospital(t)
	patientID, token := env.registerAndLogin(t, "john@example.com")

	body := gin.H{
		"hospital_id":    hospital.ID.String(),
		"specialization": "Cardiology",
		"date":           "2026-09-15",
		"time":           "10:00 AM",
		"problem":        "chest pain",
		"patient_name":   "John Carter",
	}
	w := env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/appointments", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/patients/"+patientID+"/appointments", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCatalogEndpointsArePublic(t *testing.T) {
	env := newTestEnv(t)
	hospital := env.seedHospital(t)

	w := env.do(t, http.MethodGet, "/api/v1/patients/hospitals", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/patients/specializations", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/patients/hospitals/specialization/Cardiology", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/patients/hospitals/"+hospital.ID.String()+"/specializations", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/patients/hospitals/"+hospital.ID.String()+"/doctors", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
