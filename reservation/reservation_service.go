// Package reservation serves the booking views: the role-scoped dashboard,
// cancellation and completion of bookings, and the slot picker feed.
package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hanksha/turf-booking-backend/availability"
	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/events"
	"github.com/hanksha/turf-booking-backend/identity"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/hanksha/turf-booking-backend/venue"
)

type BookingStore interface {
	ListVenues(ctx context.Context) (store.Result[[]venue.Venue], error)
	GetVenue(ctx context.Context, id string) (store.Result[venue.Venue], error)
	ListBookings(ctx context.Context, filter store.BookingFilter) (store.Result[[]bk.Booking], error)
	GetBooking(ctx context.Context, id string) (store.Result[bk.Booking], error)
	UpdateBookingStatus(ctx context.Context, id string, status bk.Status) (store.Source, error)
	IsSlotFree(ctx context.Context, venueID, date, slot string) (store.Result[bool], error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// BookingView is a booking as shown on a dashboard.
type BookingView struct {
	bk.Booking
	VenueName string `json:"venueName"`
}

type VenueBookingCount struct {
	VenueID   string `json:"venueId"`
	VenueName string `json:"venueName"`
	Count     int    `json:"bookingCount"`
}

type WeekDayBookingCount struct {
	WeekDay string `json:"dayOfWeek"`
	Count   int    `json:"bookingCount"`
}

type Dashboard struct {
	Role identity.Role `json:"role"`

	// Player view.
	Upcoming []BookingView `json:"upcoming,omitempty"`
	Past     []BookingView `json:"past,omitempty"`

	// Owner view.
	Bookings    []BookingView         `json:"bookings,omitempty"`
	ActiveCount int                   `json:"activeCount"`
	Revenue     float64               `json:"revenue"`
	PerVenue    []VenueBookingCount   `json:"perVenue,omitempty"`
	PerWeekDay  []WeekDayBookingCount `json:"perWeekDay,omitempty"`

	Source store.Source `json:"-"`
}

type Service struct {
	store     BookingStore
	checker   *availability.Checker
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(s BookingStore, publisher EventPublisher) *Service {
	return &Service{
		store:     s,
		checker:   availability.NewChecker(s),
		publisher: publisher,
		logger:    slog.Default().With("component", "reservation"),
	}
}

func (s *Service) Dashboard(ctx context.Context, principal identity.Principal) (Dashboard, error) {
	venues, err := s.store.ListVenues(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to list venues: %w", err)
	}

	names := make(map[string]string, len(venues.Value))
	for _, v := range venues.Value {
		names[v.ID] = v.Name
	}

	switch principal.Role {
	case identity.RolePlayer:
		bookings, err := s.store.ListBookings(ctx, store.BookingFilter{UserID: principal.ID})
		if err != nil {
			return Dashboard{}, fmt.Errorf("failed to list bookings: %w", err)
		}

		d := Dashboard{
			Role:     principal.Role,
			Upcoming: []BookingView{},
			Past:     []BookingView{},
			Source:   worst(venues.Source, bookings.Source),
		}
		for _, b := range bookings.Value {
			view := viewOf(b, names)
			if b.Status == bk.StatusUpcoming {
				d.Upcoming = append(d.Upcoming, view)
			} else {
				d.Past = append(d.Past, view)
			}
		}
		slices.SortStableFunc(d.Upcoming, chronological)

		return d, nil

	case identity.RoleOwner:
		bookings, err := s.store.ListBookings(ctx, store.BookingFilter{})
		if err != nil {
			return Dashboard{}, fmt.Errorf("failed to list bookings: %w", err)
		}

		owned := map[string]bool{}
		for _, v := range venues.Value {
			if v.OwnerID == principal.ID {
				owned[v.ID] = true
			}
		}

		d := Dashboard{
			Role:     principal.Role,
			Bookings: []BookingView{},
			Source:   worst(venues.Source, bookings.Source),
		}
		perVenue := map[string]int{}
		perDay := map[string]int{}
		for _, b := range bookings.Value {
			if !owned[b.VenueID] {
				continue
			}
			d.Bookings = append(d.Bookings, viewOf(b, names))
			if b.Status == bk.StatusUpcoming {
				d.ActiveCount++
			}
			if b.Status == bk.StatusCancelled {
				continue
			}
			d.Revenue += b.TotalPrice
			perVenue[b.VenueID]++
			if day, err := time.Parse(time.DateOnly, b.Date); err == nil {
				perDay[day.Weekday().String()]++
			}
		}

		for _, c := range byCount(perVenue) {
			d.PerVenue = append(d.PerVenue, VenueBookingCount{VenueID: c.key, VenueName: names[c.key], Count: c.n})
		}
		for _, c := range byCount(perDay) {
			d.PerWeekDay = append(d.PerWeekDay, WeekDayBookingCount{WeekDay: c.key, Count: c.n})
		}

		return d, nil
	}

	return Dashboard{}, fmt.Errorf("unknown role %q", principal.Role)
}

// Cancel lets a player cancel one of their own upcoming bookings, which frees
// the slot.
func (s *Service) Cancel(ctx context.Context, principal identity.Principal, id string) (store.Source, error) {
	res, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return "", err
	}
	booking := res.Value

	if principal.Role != identity.RolePlayer || booking.UserID != principal.ID {
		return "", bk.ErrNotAllowed
	}

	if booking.Status != bk.StatusUpcoming {
		return "", bk.ErrInvalidBookingState
	}

	source, err := s.store.UpdateBookingStatus(ctx, id, bk.StatusCancelled)
	if err != nil {
		return "", fmt.Errorf("failed to cancel booking: %w", err)
	}

	booking.Status = bk.StatusCancelled
	s.logger.Info("booking cancelled", "booking_id", id, "user_id", principal.ID, "source", source)
	s.publish(ctx, events.NewBookingEvent(events.BookingCancelled, booking))

	return source, nil
}

// Complete lets the owner of the booked venue mark an upcoming booking as played.
func (s *Service) Complete(ctx context.Context, principal identity.Principal, id string) (store.Source, error) {
	res, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return "", err
	}
	booking := res.Value

	if principal.Role != identity.RoleOwner {
		return "", bk.ErrNotAllowed
	}

	v, err := s.store.GetVenue(ctx, booking.VenueID)
	if err != nil || v.Value.OwnerID != principal.ID {
		return "", bk.ErrNotAllowed
	}

	if booking.Status != bk.StatusUpcoming {
		return "", bk.ErrInvalidBookingState
	}

	source, err := s.store.UpdateBookingStatus(ctx, id, bk.StatusCompleted)
	if err != nil {
		return "", fmt.Errorf("failed to complete booking: %w", err)
	}

	s.logger.Info("booking completed", "booking_id", id, "owner_id", principal.ID, "source", source)

	return source, nil
}

// Availability feeds the slot picker from a fresh load of the venue's bookings.
func (s *Service) Availability(ctx context.Context, venueID, date string) (store.Result[[]availability.SlotState], error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return store.Result[[]availability.SlotState]{}, ErrInvalidDate
	}

	v, err := s.store.GetVenue(ctx, venueID)
	if err != nil {
		return store.Result[[]availability.SlotState]{}, err
	}

	bookings, err := s.store.ListBookings(ctx, store.BookingFilter{VenueID: venueID})
	if err != nil {
		return store.Result[[]availability.SlotState]{}, fmt.Errorf("failed to list bookings: %w", err)
	}

	return store.Result[[]availability.SlotState]{
		Value:  s.checker.Slots(bookings.Value, venueID, date),
		Source: worst(v.Source, bookings.Source),
	}, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish booking event", "type", e.Type, "err", err)
	}
}

func viewOf(b bk.Booking, names map[string]string) BookingView {
	name, ok := names[b.VenueID]
	if !ok {
		name = venue.UnavailableName
	}
	return BookingView{Booking: b, VenueName: name}
}

func chronological(a, b BookingView) int {
	if c := strings.Compare(a.Date, b.Date); c != 0 {
		return c
	}
	return slices.Index(bk.Slots, a.TimeSlot) - slices.Index(bk.Slots, b.TimeSlot)
}

type count struct {
	key string
	n   int
}

// byCount orders counters by count, highest first, then by key.
func byCount(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, n := range m {
		out = append(out, count{key: k, n: n})
	}
	slices.SortFunc(out, func(a, b count) int {
		if a.n != b.n {
			return b.n - a.n
		}
		return strings.Compare(a.key, b.key)
	})
	return out
}

func worst(sources ...store.Source) store.Source {
	for _, s := range sources {
		if s == store.SourceFallback {
			return s
		}
	}
	return store.SourceRemote
}
