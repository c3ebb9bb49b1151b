package hospital

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/appointment"
	"github.com/jwalitptl/booking-api/internal/service/auth"
	"github.com/jwalitptl/booking-api/internal/service/hospital"
)

type Handler struct {
	authSvc        *auth.Service
	hospitalSvc    *hospital.Service
	appointmentSvc *appointment.Service
}

func NewHandler(authSvc *auth.Service, hospitalSvc *hospital.Service, appointmentSvc *appointment.Service) *Handler {
	return &Handler{
		authSvc:        authSvc,
		hospitalSvc:    hospitalSvc,
		appointmentSvc: appointmentSvc,
	}
}

// RegisterRoutes mounts the hospital surface. Everything under
// /:hospitalId requires a hospital token whose subject matches the path
// id.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	hospitals := r.Group("/hospitals")
	{
		hospitals.POST("/register", h.Register)
		hospitals.POST("/login", h.Login)

		authed := hospitals.Group("/:hospitalId", requireAuth)
		{
			authed.POST("/doctors", h.AddDoctor)
			authed.GET("/doctors", h.ListDoctors)
			authed.GET("/specializations", h.Specializations)
			authed.GET("/appointments/pending", h.PendingAppointments)
			authed.PUT("/appointments/:appointmentId/status", h.DecideAppointment)
		}
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	hospital, err := h.authSvc.RegisterHospital(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(hospital.Profile()))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	resp, err := h.authSvc.LoginHospital(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) AddDoctor(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Param("hospitalId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	var req model.AddDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	doctor, err := h.hospitalSvc.AddDoctor(c.Request.Context(), hospitalID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doctor.Profile()))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Param("hospitalId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	doctors, err := h.hospitalSvc.ListDoctors(c.Request.Context(), hospitalID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"doctors": doctors}))
}

func (h *Handler) Specializations(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Param("hospitalId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	specializations, err := h.hospitalSvc.Specializations(c.Request.Context(), hospitalID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"specializations": specializations}))
}

func (h *Handler) PendingAppointments(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Param("hospitalId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	pending, err := h.appointmentSvc.PendingForHospital(c.Request.Context(), hospitalID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"appointments": pending}))
}

func (h *Handler) DecideAppointment(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Param("hospitalId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}
	appointmentID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	appointment, err := h.appointmentSvc.Decide(c.Request.Context(), hospitalID, appointmentID, req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"appointment_id": appointment.ID,
		"status":         appointment.Status,
	}))
}
