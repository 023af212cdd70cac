package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/metrics"
	"github.com/hanksha/turf-booking-backend/venue"
)

// Gateway tries the remote backend first and falls back to the local mirror
// when the remote fails for a reason other than a domain error. Writes that
// land locally are not replayed to the remote; the next successful unfiltered
// remote read overwrites them.
type Gateway struct {
	remote Backend
	local  Mirror
	logger *slog.Logger
}

func NewGateway(remote Backend, local Mirror) *Gateway {
	return &Gateway{
		remote: remote,
		local:  local,
		logger: slog.Default().With("component", "store"),
	}
}

// shouldFallback reports whether err is an infrastructure failure. Conflicts,
// missing records and a cancelled caller are answers, not outages.
func shouldFallback(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	switch {
	case errors.Is(err, bk.ErrSlotTaken),
		errors.Is(err, bk.ErrBookingNotFound),
		errors.Is(err, venue.ErrVenueNotFound),
		errors.Is(err, context.Canceled):
		return false
	}

	return true
}

func call[T any](ctx context.Context, g *Gateway, op string, fn func(Backend) (T, error)) (Result[T], error) {
	value, err := fn(g.remote)
	if err == nil {
		return Result[T]{Value: value, Source: SourceRemote}, nil
	}

	if !shouldFallback(ctx, err) {
		return Result[T]{Source: SourceRemote}, err
	}

	g.logger.Warn("remote store failed, using local fallback", "op", op, "err", err)
	metrics.StoreFallbacks.WithLabelValues(op).Inc()

	value, localErr := fn(g.local)
	if localErr != nil {
		if !shouldFallback(ctx, localErr) {
			return Result[T]{Source: SourceFallback}, localErr
		}
		return Result[T]{Source: SourceFallback}, fmt.Errorf("%s failed on both stores: %w", op, errors.Join(err, localErr))
	}

	return Result[T]{Value: value, Source: SourceFallback}, nil
}

func exec(ctx context.Context, g *Gateway, op string, fn func(Backend) error) (Source, error) {
	res, err := call(ctx, g, op, func(b Backend) (struct{}, error) {
		return struct{}{}, fn(b)
	})
	return res.Source, err
}

func (g *Gateway) ListVenues(ctx context.Context) (Result[[]venue.Venue], error) {
	res, err := call(ctx, g, "list_venues", func(b Backend) ([]venue.Venue, error) {
		return b.ListVenues(ctx)
	})

	if err == nil && res.Source == SourceRemote {
		if err := g.local.ReplaceVenues(ctx, res.Value); err != nil {
			g.logger.Warn("failed to refresh local venue mirror", "err", err)
		}
	}

	return res, err
}

func (g *Gateway) GetVenue(ctx context.Context, id string) (Result[venue.Venue], error) {
	return call(ctx, g, "get_venue", func(b Backend) (venue.Venue, error) {
		return b.GetVenue(ctx, id)
	})
}

func (g *Gateway) CreateVenue(ctx context.Context, v venue.Venue) (Result[venue.Venue], error) {
	return call(ctx, g, "create_venue", func(b Backend) (venue.Venue, error) {
		return b.CreateVenue(ctx, v)
	})
}

func (g *Gateway) UpdateVenue(ctx context.Context, id string, patch venue.Patch) (Source, error) {
	return exec(ctx, g, "update_venue", func(b Backend) error {
		return b.UpdateVenue(ctx, id, patch)
	})
}

func (g *Gateway) DeleteVenue(ctx context.Context, id string) (Source, error) {
	return exec(ctx, g, "delete_venue", func(b Backend) error {
		return b.DeleteVenue(ctx, id)
	})
}

func (g *Gateway) DeleteVenuesByOwner(ctx context.Context, ownerID string) (Result[int], error) {
	return call(ctx, g, "delete_owner_venues", func(b Backend) (int, error) {
		return b.DeleteVenuesByOwner(ctx, ownerID)
	})
}

// ListBookings refreshes the local mirror only for unfiltered remote reads.
// A filtered read that falls back filters the local data instead.
func (g *Gateway) ListBookings(ctx context.Context, filter BookingFilter) (Result[[]bk.Booking], error) {
	res, err := call(ctx, g, "list_bookings", func(b Backend) ([]bk.Booking, error) {
		return b.ListBookings(ctx, filter)
	})

	if err == nil && res.Source == SourceRemote && filter.IsZero() {
		if err := g.local.ReplaceBookings(ctx, res.Value); err != nil {
			g.logger.Warn("failed to refresh local booking mirror", "err", err)
		}
	}

	return res, err
}

func (g *Gateway) GetBooking(ctx context.Context, id string) (Result[bk.Booking], error) {
	return call(ctx, g, "get_booking", func(b Backend) (bk.Booking, error) {
		return b.GetBooking(ctx, id)
	})
}

func (g *Gateway) CreateBooking(ctx context.Context, booking bk.Booking) (Result[bk.Booking], error) {
	return call(ctx, g, "create_booking", func(b Backend) (bk.Booking, error) {
		return b.CreateBooking(ctx, booking)
	})
}

func (g *Gateway) UpdateBookingStatus(ctx context.Context, id string, status bk.Status) (Source, error) {
	return exec(ctx, g, "update_booking_status", func(b Backend) error {
		return b.UpdateBookingStatus(ctx, id, status)
	})
}

func (g *Gateway) DeleteBooking(ctx context.Context, id string) (Source, error) {
	return exec(ctx, g, "delete_booking", func(b Backend) error {
		return b.DeleteBooking(ctx, id)
	})
}

func (g *Gateway) IsSlotFree(ctx context.Context, venueID, date, slot string) (Result[bool], error) {
	return call(ctx, g, "is_slot_free", func(b Backend) (bool, error) {
		return b.IsSlotFree(ctx, venueID, date, slot)
	})
}
