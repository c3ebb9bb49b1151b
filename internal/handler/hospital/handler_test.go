package hospital

import (
	"bytes"
	"context"
	"encoding/json"
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
	hospitalService "github.com/jwalitptl/booking-api/internal/service/hospital"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
)

type testEnv struct {
	engine         *gin.Engine
	patientRepo    *memory.PatientRepository
	appointmentSvc *appointmentService.Service
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
	hospitalSvc := hospitalService.NewService(hospitalRepo, doctorRepo, catalogSvc, hasher, eventSvc, quiet)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, patientRepo, hospitalRepo, doctorRepo,
		catalogSvc, eventSvc, metrics.New("test"), quiet,
	)

	authMW := middleware.NewAuthMiddleware(authSvc)
	h := NewHandler(authSvc, hospitalSvc, appointmentSvc)

	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api, authMW.RequireRole(model.RoleHospital, "hospitalId"))

	return &testEnv{
		engine:         engine,
		patientRepo:    patientRepo,
		appointmentSvc: appointmentSvc,
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
	w := e.do(t, http.MethodPost, "/api/v1/hospitals/register", "", gin.H{
		"hospital_name": "City General",
		"email":         email,
		"password":      "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	w = e.do(t, http.MethodPost, "/api/v1/hospitals/login", "", gin.H{
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
	return reg.Data.ID, login.Data.Token
}

func (e *testEnv) seedBooking(t *testing.T, hospitalID string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	patient := &model.Patient{
		Base:          model.Base{ID: uuid.New()},
		FullName:      "John Carter",
		ContactNumber: "555-0100",
		Email:         "john@example.com",
		PasswordHash:  "x",
	}
	require.NoError(t, e.patientRepo.Create(ctx, patient))

	appt, err := e.appointmentSvc.Book(ctx, patient.ID, &model.BookAppointmentRequest{
		HospitalID:     hospitalID,
		Specialization: "Cardiology",
		Date:           "2026-09-15",
		Time:           "10:00 AM",
		Problem:        "chest pain",
		PatientName:    patient.FullName,
	})
	require.NoError(t, err)
	return appt.ID
}

func TestAddDoctorAndDecisionFlow(t *testing.T) {
	env := newTestEnv(t)
	hospitalID, token := env.registerAndLogin(t, "admin@citygeneral.example.com")

	// Adding a doctor introduces the specialization.
	w := env.do(t, http.MethodPost, "/api/v1/hospitals/"+hospitalID+"/doctors", token, gin.H{
		"name":           "Dr. Reed",
		"email":          "reed@citygeneral.example.com",
		"password":       "supersecret",
		"specialization": "Cardiology",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/hospitals/"+hospitalID+"/specializations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var specs struct {
		Data struct {
			Specializations []string `json:"specializations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &specs))
	assert.Equal(t, []string{"Cardiology"}, specs.Data.Specializations)

	apptID := env.seedBooking(t, hospitalID)

	// Pending list shows the booking with the patient joined in.
	w = env.do(t, http.MethodGet, "/api/v1/hospitals/"+hospitalID+"/appointments/pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending struct {
		Data struct {
			Appointments []struct {
				AppointmentID string `json:"appointment_id"`
				PatientEmail  string `json:"patient_email"`
			} `json:"appointments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending.Data.Appointments, 1)
	assert.Equal(t, apptID.String(), pending.Data.Appointments[0].AppointmentID)
	assert.Equal(t, "john@example.com", pending.Data.Appointments[0].PatientEmail)

	// Approve it.
	w = env.do(t, http.MethodPut,
		"/api/v1/hospitals/"+hospitalID+"/appointments/"+apptID.String()+"/status", token,
		gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The decision is terminal.
	w = env.do(t, http.MethodPut,
		"/api/v1/hospitals/"+hospitalID+"/appointments/"+apptID.String()+"/status", token,
		gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Pending list is empty afterwards.
	w = env.do(t, http.MethodGet, "/api/v1/hospitals/"+hospitalID+"/appointments/pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending.Data.Appointments = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	assert.Empty(t, pending.Data.Appointments)
}

func TestDecision_OtherHospitalTokenForbidden(t *testing.T) {
	env := newTestEnv(t)
	hospitalID, _ := env.registerAndLogin(t, "admin@citygeneral.example.com")
	_, otherToken := env.registerAndLogin(t, "admin@mercywest.example.com")

	env.do(t, http.MethodPost, "/api/v1/hospitals/"+hospitalID+"/doctors", otherToken, gin.H{})

	w := env.do(t, http.MethodGet, "/api/v1/hospitals/"+hospitalID+"/appointments/pending", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDecision_InvalidStatusRejectedAtBinding(t *testing.T) {
	env := newTestEnv(t)
	hospitalID, token := env.registerAndLogin(t, "admin@citygeneral.example.com")

	w := env.do(t, http.MethodPost, "/api/v1/hospitals/"+hospitalID+"/doctors", token, gin.H{
		"name":           "Dr. Reed",
		"email":          "reed@citygeneral.example.com",
		"password":       "supersecret",
		"specialization": "Cardiology",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	apptID := env.seedBooking(t, hospitalID)

	w = env.do(t, http.MethodPut,
		"/api/v1/hospitals/"+hospitalID+"/appointments/"+apptID.String()+"/status", token,
		gin.H{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
