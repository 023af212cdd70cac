package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/turf-booking-backend/availability"
	"github.com/hanksha/turf-booking-backend/identity"
	"github.com/hanksha/turf-booking-backend/reservation"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/hanksha/turf-booking-backend/venue"
)

type VenueService interface {
	Search(ctx context.Context, filter venue.Filter) (store.Result[[]venue.Venue], error)
	Get(ctx context.Context, id string) (store.Result[venue.Venue], error)
	Add(ctx context.Context, ownerID string, v venue.Venue) (store.Result[venue.Venue], error)
	Edit(ctx context.Context, ownerID, id string, patch venue.Patch) (store.Result[venue.Venue], error)
	Remove(ctx context.Context, ownerID, id string) (store.Source, error)
}

type AvailabilityService interface {
	Availability(ctx context.Context, venueID, date string) (store.Result[[]availability.SlotState], error)
}

type VenueHandler struct {
	venues VenueService
	slots  AvailabilityService
}

func NewVenueHandler(venues VenueService, slots AvailabilityService) *VenueHandler {
	return &VenueHandler{venues: venues, slots: slots}
}

func (h *VenueHandler) Register(rg *gin.RouterGroup) {
	ownerOnly := RequireRole(identity.RoleOwner)
	rg.GET("", h.Search)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/availability", h.Availability)
	rg.POST("", ownerOnly, h.Add)
	rg.PATCH("/:id", ownerOnly, h.Edit)
	rg.DELETE("/:id", ownerOnly, h.Remove)
}

// Search filters by ?query= and ?sport=. Owners can pass ?mine=true to list
// only their own venues.
func (h *VenueHandler) Search(c *gin.Context) {
	var filter venue.Filter

	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	if c.Query("mine") == "true" {
		filter.OwnerID = currentUser(c).ID
	}

	res, err := h.venues.Search(c.Request.Context(), filter)

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve venues"})
		return
	}

	markSource(c, res.Source)
	c.IndentedJSON(http.StatusOK, res.Value)
}

func (h *VenueHandler) GetByID(c *gin.Context) {
	res, err := h.venues.Get(c.Request.Context(), c.Param("id"))

	if err != nil {
		c.Error(err)
		if errors.Is(err, venue.ErrVenueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch venue"})
		return
	}

	markSource(c, res.Source)
	c.IndentedJSON(http.StatusOK, res.Value)
}

func (h *VenueHandler) Availability(c *gin.Context) {
	res, err := h.slots.Availability(c.Request.Context(), c.Param("id"), c.Query("date"))

	if err != nil {
		c.Error(err)
		if errors.Is(err, reservation.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
		} else if errors.Is(err, venue.ErrVenueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch availability"})
		}
		return
	}

	markSource(c, res.Source)
	c.IndentedJSON(http.StatusOK, res.Value)
}

func (h *VenueHandler) Add(c *gin.Context) {
	var v venue.Venue

	if err := c.BindJSON(&v); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	res, err := h.venues.Add(c.Request.Context(), currentUser(c).ID, v)

	if err != nil {
		c.Error(err)
		if errors.Is(err, venue.ErrInvalidVenue) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid venue"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create venue"})
		return
	}

	markSource(c, res.Source)
	c.JSON(http.StatusCreated, res.Value)
}

func (h *VenueHandler) Edit(c *gin.Context) {
	var patch venue.Patch

	if err := c.BindJSON(&patch); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	res, err := h.venues.Edit(c.Request.Context(), currentUser(c).ID, c.Param("id"), patch)

	if err != nil {
		c.Error(err)
		if errors.Is(err, venue.ErrVenueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
		} else if errors.Is(err, venue.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to modify this venue"})
		} else if errors.Is(err, venue.ErrInvalidVenue) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid venue"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to modify venue"})
		}
		return
	}

	markSource(c, res.Source)
	c.IndentedJSON(http.StatusOK, res.Value)
}

func (h *VenueHandler) Remove(c *gin.Context) {
	source, err := h.venues.Remove(c.Request.Context(), currentUser(c).ID, c.Param("id"))

	if err != nil {
		c.Error(err)
		if errors.Is(err, venue.ErrVenueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
		} else if errors.Is(err, venue.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to remove this venue"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove venue"})
		}
		return
	}

	markSource(c, source)
	c.IndentedJSON(http.StatusOK, gin.H{"message": "venue removed"})
}
