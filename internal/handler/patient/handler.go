package patient

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/appointment"
	"github.com/jwalitptl/booking-api/internal/service/auth"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
)

type Handler struct {
	authSvc        *auth.Service
	catalogSvc     *catalog.Service
	appointmentSvc *appointment.Service
}

func NewHandler(authSvc *auth.Service, catalogSvc *catalog.Service, appointmentSvc *appointment.Service) *Handler {
	return &Handler{
		authSvc:        authSvc,
		catalogSvc:     catalogSvc,
		appointmentSvc: appointmentSvc,
	}
}

// RegisterRoutes mounts the patient surface. The catalog browse endpoints
// are public; everything under /:patientId requires a patient token whose
// subject matches the path id.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	patients := r.Group("/patients")
	{
		patients.POST("/register", h.Register)
		patients.POST("/login", h.Login)

		patients.GET("/hospitals", h.ListHospitals)
		patients.GET("/specializations", h.ListSpecializations)
		patients.GET("/hospitals/specialization/:specialization", h.ListHospitalsBySpecialization)
		patients.GET("/hospitals/:hospitalId/specializations", h.HospitalSpecializations)
		patients.GET("/hospitals/:hospitalId/doctors", h.ListDoctors)
		patients.GET("/timeslots", h.AvailableSlots)

		authed := patients.Group("/:patientId", requireAuth)
		{
			authed.POST("/appointments", h.Book)
			authed.GET("/appointments", h.History)
			authed.GET("/appointments/:appointmentId", h.AppointmentStatus)
		}
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	patient, err := h.authSvc.RegisterPatient(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(patient.Profile()))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	resp, err := h.authSvc.LoginPatient(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) ListHospitals(c *gin.Context) {
	hospitals, err := h.catalogSvc.ListHospitals(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"hospitals": hospitals}))
}

func (h *Handler) ListSpecializations(c *gin.Context) {
	specializations, err := h.catalogSvc.ListSpecializations(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"specializations": specializations}))
}

func (h *Handler) ListHospitalsBySpecialization(c *gin.Context) {
	hospitals, err := h.catalogSvc.ListHospitalsBySpecialization(c.Request.Context(), c.Param("specialization"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"hospitals": hospitals}))
}

func (h *Handler) HospitalSpecializations(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Param("hospitalId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	specializations, err := h.catalogSvc.HospitalSpecializations(c.Request.Context(), hospitalID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"specializations": specializations}))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Param("hospitalId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	doctors, err := h.catalogSvc.ListDoctors(c.Request.Context(), hospitalID, c.Query("specialization"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"doctors": doctors}))
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Query("hospitalId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	var doctorID *uuid.UUID
	if raw := c.Query("doctorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
			return
		}
		doctorID = &id
	}

	date, err := time.Parse(model.DateFormat, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date format"))
		return
	}

	slots, err := h.appointmentSvc.AvailableSlots(c.Request.Context(), hospitalID, doctorID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"available_slots": slots}))
}

func (h *Handler) Book(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	appointment, err := h.appointmentSvc.Book(c.Request.Context(), patientID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{"appointment_id": appointment.ID}))
}

func (h *Handler) History(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	history, err := h.appointmentSvc.PatientHistory(c.Request.Context(), patientID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"appointments": history}))
}

func (h *Handler) AppointmentStatus(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}
	appointmentID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	view, err := h.appointmentSvc.PatientAppointment(c.Request.Context(), patientID, appointmentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}
