package account

import (
	"errors"
	"net/http"

	"bookhub/internal/pkg/response"
	"bookhub/internal/repository"

	"github.com/gin-gonic/gin"
)

// Handler exposes the authenticated caller's own profile. Identity
// comes from the verified token, never from request input.
type Handler struct {
	users *repository.UserRepository
}

func NewHandler(users *repository.UserRepository) *Handler {
	return &Handler{users: users}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.users.GetByID(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
		return
	}
	response.Success(c, http.StatusOK, u)
}
