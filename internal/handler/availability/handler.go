package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velvetarcana/booking-api/internal/service/schedule"
	"github.com/velvetarcana/booking-api/pkg/errors"
	"github.com/velvetarcana/booking-api/pkg/httputil"
)

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/availability", h.GetAvailability)
}

// GetAvailability answers "is the slot structurally open" for a date. It does
// not consult claims; callers needing true bookability combine this with the
// taken check.
func (h *Handler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httputil.RespondWithError(c, errors.InvalidRequest("date is required"))
		return
	}

	resp, err := h.service.Resolve(c.Request.Context(), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}
