package events_test

import (
	"context"
	"encoding/json"
	"testing"

	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingEvent(t *testing.T) {
	b := bk.Booking{ID: "b1", VenueID: "v1", UserID: "u1", Date: "2025-05-01", TimeSlot: "07:00 PM", TotalPrice: 1200}

	e := events.NewBookingEvent(events.BookingConfirmed, b)

	assert.Equal(t, events.BookingConfirmed, e.Type)
	assert.Equal(t, "b1", e.BookingID)
	assert.False(t, e.OccurredAt.IsZero())

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"booking.confirmed"`)
	assert.Contains(t, string(raw), `"timeSlot":"07:00 PM"`)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, events.Noop{}.Publish(context.Background(), events.Event{}))
}
