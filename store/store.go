// Package store persists venues and bookings. A Gateway puts a remote backend
// (PostgreSQL or MongoDB) in front of a local bolt file that mirrors the last
// successful remote read and takes over writes while the remote is failing.
package store

import (
	"context"

	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/venue"
)

type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Result tags a value with the backend that produced it.
type Result[T any] struct {
	Value  T
	Source Source
}

func (r Result[T]) Degraded() bool {
	return r.Source == SourceFallback
}

type BookingFilter struct {
	UserID  string
	VenueID string
}

func (f BookingFilter) IsZero() bool {
	return f.UserID == "" && f.VenueID == ""
}

func (f BookingFilter) Matches(b bk.Booking) bool {
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.VenueID != "" && b.VenueID != f.VenueID {
		return false
	}
	return true
}

// Backend is the contract every store implements. CreateBooking must refuse,
// atomically, a booking whose slot is already held by an upcoming booking and
// report it as booking.ErrSlotTaken.
type Backend interface {
	ListVenues(ctx context.Context) ([]venue.Venue, error)
	GetVenue(ctx context.Context, id string) (venue.Venue, error)
	CreateVenue(ctx context.Context, v venue.Venue) (venue.Venue, error)
	UpdateVenue(ctx context.Context, id string, patch venue.Patch) error
	DeleteVenue(ctx context.Context, id string) error
	DeleteVenuesByOwner(ctx context.Context, ownerID string) (int, error)

	ListBookings(ctx context.Context, filter BookingFilter) ([]bk.Booking, error)
	GetBooking(ctx context.Context, id string) (bk.Booking, error)
	CreateBooking(ctx context.Context, b bk.Booking) (bk.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status bk.Status) error
	DeleteBooking(ctx context.Context, id string) error
	IsSlotFree(ctx context.Context, venueID, date, slot string) (bool, error)
}

// Mirror is a Backend that can be overwritten wholesale with remote data.
type Mirror interface {
	Backend
	ReplaceVenues(ctx context.Context, venues []venue.Venue) error
	ReplaceBookings(ctx context.Context, bookings []bk.Booking) error
}
