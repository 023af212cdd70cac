package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/identity"
	"github.com/hanksha/turf-booking-backend/reservation"
	"github.com/hanksha/turf-booking-backend/store"
)

type BookingService interface {
	Dashboard(ctx context.Context, principal identity.Principal) (reservation.Dashboard, error)
	Cancel(ctx context.Context, principal identity.Principal, id string) (store.Source, error)
	Complete(ctx context.Context, principal identity.Principal, id string) (store.Source, error)
}

type BookingHandler struct {
	service BookingService
}

func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.Dashboard)
	rg.PUT("/:id/cancel", RequireRole(identity.RolePlayer), h.Cancel)
	rg.PUT("/:id/complete", RequireRole(identity.RoleOwner), h.Complete)
}

func (h *BookingHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context(), currentUser(c))

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve bookings"})
		return
	}

	markSource(c, dashboard.Source)
	c.IndentedJSON(http.StatusOK, dashboard)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	source, err := h.service.Cancel(c.Request.Context(), currentUser(c), c.Param("id"))

	if err != nil {
		c.Error(err)
		respondBookingError(c, err, "failed to cancel booking")
		return
	}

	markSource(c, source)
	c.IndentedJSON(http.StatusOK, gin.H{"message": "booking cancelled"})
}

func (h *BookingHandler) Complete(c *gin.Context) {
	source, err := h.service.Complete(c.Request.Context(), currentUser(c), c.Param("id"))

	if err != nil {
		c.Error(err)
		respondBookingError(c, err, "failed to complete booking")
		return
	}

	markSource(c, source)
	c.IndentedJSON(http.StatusOK, gin.H{"message": "booking completed"})
}

func respondBookingError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, bk.ErrBookingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	} else if errors.Is(err, bk.ErrInvalidBookingState) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking state"})
	} else if errors.Is(err, bk.ErrNotAllowed) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to modify this booking"})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
