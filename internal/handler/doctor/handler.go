package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/appointment"
	"github.com/jwalitptl/booking-api/internal/service/auth"
)

type Handler struct {
	authSvc        *auth.Service
	appointmentSvc *appointment.Service
}

func NewHandler(authSvc *auth.Service, appointmentSvc *appointment.Service) *Handler {
	return &Handler{
		authSvc:        authSvc,
		appointmentSvc: appointmentSvc,
	}
}

// RegisterRoutes mounts the doctor surface. Doctor accounts are created
// by hospitals, so there is no register endpoint here.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("/login", h.Login)

		authed := doctors.Group("/:doctorId", requireAuth)
		{
			authed.GET("/appointments", h.Appointments)
		}
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	resp, err := h.authSvc.LoginDoctor(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) Appointments(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	appointments, err := h.appointmentSvc.DoctorAppointments(c.Request.Context(), doctorID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"appointments": appointments}))
}
