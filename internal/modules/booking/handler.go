package booking

import (
	"errors"
	"net/http"
	"strconv"

	"bookhub/internal/domain"
	"bookhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/action", h.Action)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	role := domain.UserRole(c.GetString("role"))
	if role != domain.RoleCustomer {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only customers can create bookings")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.CustomerID = c.GetInt64("user_id")

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, BookingResponse{
		BookingID: b.ID,
		Status:    string(b.Status()),
		Message:   "Booking created",
	})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id, c.GetInt64("user_id"), domain.UserRole(c.GetString("role")))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	status, detail := b.State.StatusPair()
	response.Success(c, http.StatusOK, gin.H{
		"booking":       b,
		"status":        status,
		"detail_status": detail,
	})
}

func (h *Handler) Action(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Transition(c.Request.Context(), TransitionRequest{
		BookingID: id,
		ActorID:   c.GetInt64("user_id"),
		ActorRole: domain.UserRole(c.GetString("role")),
		Action:    req.Action,
		Reason:    req.Reason,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, BookingResponse{
		BookingID: b.ID,
		Status:    string(b.Status()),
		Message:   "Booking " + string(b.State),
	})
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnknownAction):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrBusinessRule):
		response.Error(c, http.StatusBadRequest, "BUSINESS_RULE", "Cannot complete booking before service time has passed")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this booking")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Booking state changed, retry with current state")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process booking action")
	}
}
