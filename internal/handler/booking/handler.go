package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/velvetarcana/booking-api/internal/middleware"
	"github.com/velvetarcana/booking-api/internal/model"
	"github.com/velvetarcana/booking-api/internal/service/booking"
	"github.com/velvetarcana/booking-api/pkg/errors"
	"github.com/velvetarcana/booking-api/pkg/httputil"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("/taken", h.IsSlotTaken)
		bookings.POST("/holds", h.CreateHold)
		bookings.DELETE("/holds/:id", h.ReleaseHold)
		bookings.POST("/holds/:id/confirm", h.ConfirmHold)
	}
}

func (h *Handler) IsSlotTaken(c *gin.Context) {
	taken, err := h.service.IsSlotTaken(
		c.Request.Context(),
		c.Query("service_id"),
		c.Query("date"),
		c.Query("time"),
	)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, model.SlotTakenResponse{Taken: taken})
}

func (h *Handler) CreateHold(c *gin.Context) {
	var req model.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.InvalidRequest(err.Error()))
		return
	}

	resp, err := h.service.CreateHold(c.Request.Context(), &req, h.identity(c, req.RequesterEmail))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, resp)
}

func (h *Handler) ReleaseHold(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.InvalidRequest("invalid hold ID"))
		return
	}

	if err := h.service.ReleaseHold(c.Request.Context(), id, h.identity(c, "")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ConfirmHold(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.InvalidRequest("invalid hold ID"))
		return
	}

	summary, err := h.service.Confirm(c.Request.Context(), id, h.identity(c, ""))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, summary)
}

// identity builds the requester identity from the optional authenticated
// user set by the auth middleware, falling back to the anonymous email arm.
func (h *Handler) identity(c *gin.Context, email string) model.RequesterIdentity {
	if userID := c.GetString(middleware.ContextUserID); userID != "" {
		return model.AuthenticatedRequester(userID, email)
	}
	return model.AnonymousRequester(email)
}
