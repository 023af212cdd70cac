// Package availability answers whether a slot can be booked, either from an
// in-memory snapshot (soft) or from the store at the moment of commitment (hard).
package availability

import (
	"context"

	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/metrics"
	"github.com/hanksha/turf-booking-backend/store"
)

type SlotGateway interface {
	IsSlotFree(ctx context.Context, venueID, date, slot string) (store.Result[bool], error)
}

type SlotState struct {
	TimeSlot  string `json:"timeSlot"`
	Available bool   `json:"available"`
}

type Checker struct {
	gateway SlotGateway
}

func NewChecker(gateway SlotGateway) *Checker {
	return &Checker{gateway: gateway}
}

// Soft may be stale: it only sees the bookings in snapshot.
func (c *Checker) Soft(snapshot []bk.Booking, venueID, date, slot string) bool {
	free := bk.SlotFree(snapshot, venueID, date, slot)
	if !free {
		metrics.SlotConflicts.WithLabelValues("soft").Inc()
	}
	return free
}

func (c *Checker) Hard(ctx context.Context, venueID, date, slot string) (store.Result[bool], error) {
	res, err := c.gateway.IsSlotFree(ctx, venueID, date, slot)
	if err == nil && !res.Value {
		metrics.SlotConflicts.WithLabelValues("hard").Inc()
	}
	return res, err
}

// Slots lists every bookable slot of a date with its availability in snapshot.
func (c *Checker) Slots(snapshot []bk.Booking, venueID, date string) []SlotState {
	states := make([]SlotState, 0, len(bk.Slots))
	for _, slot := range bk.Slots {
		states = append(states, SlotState{
			TimeSlot:  slot,
			Available: bk.SlotFree(snapshot, venueID, date, slot),
		})
	}
	return states
}
