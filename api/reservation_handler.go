package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/turf-booking-backend/availability"
	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/venue"
	"github.com/hanksha/turf-booking-backend/workflow"
)

type WorkflowService interface {
	Start(ctx context.Context, userID, userName, venueID string) (workflow.State, error)
	State(userID, id string) (workflow.State, error)
	Dates(userID, id string) ([]string, error)
	Slots(userID, id, date string) ([]availability.SlotState, error)
	Select(userID, id, date, slot string) (workflow.State, error)
	Back(userID, id string) (workflow.State, error)
	ConfirmPayment(ctx context.Context, userID, id string, details workflow.PaymentDetails, wait bool) (workflow.State, error)
	Close(userID, id string) error
}

type ReservationHandler struct {
	service WorkflowService
}

func NewReservationHandler(service WorkflowService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

type startRequest struct {
	VenueID string `json:"venueId" binding:"required"`
}

type selectRequest struct {
	Date     string `json:"date" binding:"required"`
	TimeSlot string `json:"timeSlot" binding:"required"`
}

func (h *ReservationHandler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.Start)
	rg.GET("/:id", h.GetState)
	rg.GET("/:id/dates", h.Dates)
	rg.GET("/:id/slots", h.Slots)
	rg.PUT("/:id/slot", h.Select)
	rg.PUT("/:id/back", h.Back)
	rg.POST("/:id/payment", h.ConfirmPayment)
	rg.DELETE("/:id", h.Close)
}

func (h *ReservationHandler) Start(c *gin.Context) {
	var req startRequest

	if err := c.BindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	user := currentUser(c)
	state, err := h.service.Start(c.Request.Context(), user.ID, user.Name, req.VenueID)

	if err != nil {
		c.Error(err)
		if errors.Is(err, venue.ErrVenueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start reservation"})
		return
	}

	c.JSON(http.StatusCreated, state)
}

func (h *ReservationHandler) GetState(c *gin.Context) {
	state, err := h.service.State(currentUser(c).ID, c.Param("id"))

	if err != nil {
		c.Error(err)
		respondWorkflowError(c, err, state, "failed to fetch reservation")
		return
	}

	c.IndentedJSON(http.StatusOK, state)
}

func (h *ReservationHandler) Dates(c *gin.Context) {
	dates, err := h.service.Dates(currentUser(c).ID, c.Param("id"))

	if err != nil {
		c.Error(err)
		respondWorkflowError(c, err, workflow.State{}, "failed to fetch dates")
		return
	}

	c.IndentedJSON(http.StatusOK, dates)
}

func (h *ReservationHandler) Slots(c *gin.Context) {
	slots, err := h.service.Slots(currentUser(c).ID, c.Param("id"), c.Query("date"))

	if err != nil {
		c.Error(err)
		respondWorkflowError(c, err, workflow.State{}, "failed to fetch slots")
		return
	}

	c.IndentedJSON(http.StatusOK, slots)
}

func (h *ReservationHandler) Select(c *gin.Context) {
	var req selectRequest

	if err := c.BindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	state, err := h.service.Select(currentUser(c).ID, c.Param("id"), req.Date, req.TimeSlot)

	if err != nil {
		c.Error(err)
		respondWorkflowError(c, err, state, "failed to select slot")
		return
	}

	c.IndentedJSON(http.StatusOK, state)
}

func (h *ReservationHandler) Back(c *gin.Context) {
	state, err := h.service.Back(currentUser(c).ID, c.Param("id"))

	if err != nil {
		c.Error(err)
		respondWorkflowError(c, err, state, "failed to go back")
		return
	}

	c.IndentedJSON(http.StatusOK, state)
}

// ConfirmPayment replies 202 while settlement runs. With ?wait=true it replies
// once the booking is committed or the slot is lost.
func (h *ReservationHandler) ConfirmPayment(c *gin.Context) {
	var details workflow.PaymentDetails

	if err := c.BindJSON(&details); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	wait := c.Query("wait") == "true"
	state, err := h.service.ConfirmPayment(c.Request.Context(), currentUser(c).ID, c.Param("id"), details, wait)

	if err != nil {
		c.Error(err)
		respondWorkflowError(c, err, state, "failed to confirm payment")
		return
	}

	markSource(c, state.Source)

	if state.Stage == workflow.StageSettling {
		c.JSON(http.StatusAccepted, state)
		return
	}

	c.IndentedJSON(http.StatusOK, state)
}

func (h *ReservationHandler) Close(c *gin.Context) {
	if err := h.service.Close(currentUser(c).ID, c.Param("id")); err != nil {
		c.Error(err)
		respondWorkflowError(c, err, workflow.State{}, "failed to close reservation")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"message": "reservation closed"})
}

func respondWorkflowError(c *gin.Context, err error, state workflow.State, fallback string) {
	if errors.Is(err, workflow.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
	} else if errors.Is(err, bk.ErrSlotTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "slot already booked", "reservation": state})
	} else if errors.Is(err, workflow.ErrInvalidSelection) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be within the booking window and slot must be a bookable hour"})
	} else if errors.Is(err, workflow.ErrInvalidPayment) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card holder and card number are required"})
	} else if errors.Is(err, workflow.ErrInvalidStage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "operation not allowed in the current stage"})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
