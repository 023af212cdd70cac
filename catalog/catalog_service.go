// Package catalog serves venue search and the owner-scoped venue listing
// operations.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hanksha/turf-booking-backend/store"
	"github.com/hanksha/turf-booking-backend/venue"
)

type VenueStore interface {
	ListVenues(ctx context.Context) (store.Result[[]venue.Venue], error)
	GetVenue(ctx context.Context, id string) (store.Result[venue.Venue], error)
	CreateVenue(ctx context.Context, v venue.Venue) (store.Result[venue.Venue], error)
	UpdateVenue(ctx context.Context, id string, patch venue.Patch) (store.Source, error)
	DeleteVenue(ctx context.Context, id string) (store.Source, error)
}

type Service struct {
	venues VenueStore
	logger *slog.Logger
	now    func() time.Time
}

func NewService(venues VenueStore) *Service {
	return &Service{
		venues: venues,
		logger: slog.Default().With("component", "catalog"),
		now:    time.Now,
	}
}

func (s *Service) Search(ctx context.Context, filter venue.Filter) (store.Result[[]venue.Venue], error) {
	res, err := s.venues.ListVenues(ctx)
	if err != nil {
		return store.Result[[]venue.Venue]{}, fmt.Errorf("failed to list venues: %w", err)
	}

	res.Value = filter.Apply(res.Value)

	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (store.Result[venue.Venue], error) {
	return s.venues.GetVenue(ctx, id)
}

// Add lists a new venue for ownerID. The caller-supplied id and owner are
// ignored.
func (s *Service) Add(ctx context.Context, ownerID string, v venue.Venue) (store.Result[venue.Venue], error) {
	v.ID = ""
	v.OwnerID = ownerID
	v.Name = strings.TrimSpace(v.Name)
	v.Location = strings.TrimSpace(v.Location)
	v.CreatedAt = s.now().UTC()
	v = v.WithDefaults()

	if err := venue.Validate(v); err != nil {
		return store.Result[venue.Venue]{}, err
	}

	res, err := s.venues.CreateVenue(ctx, v)
	if err != nil {
		return store.Result[venue.Venue]{}, fmt.Errorf("failed to create venue: %w", err)
	}

	s.logger.Info("venue listed", "venue_id", res.Value.ID, "owner_id", ownerID, "source", res.Source)

	return res, nil
}

func (s *Service) Edit(ctx context.Context, ownerID, id string, patch venue.Patch) (store.Result[venue.Venue], error) {
	current, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return store.Result[venue.Venue]{}, err
	}

	if patch.IsEmpty() {
		return current, nil
	}

	if err := venue.ValidatePatch(current.Value, patch); err != nil {
		return store.Result[venue.Venue]{}, err
	}

	source, err := s.venues.UpdateVenue(ctx, id, patch)
	if err != nil {
		return store.Result[venue.Venue]{}, fmt.Errorf("failed to update venue: %w", err)
	}

	return store.Result[venue.Venue]{Value: patch.Apply(current.Value), Source: source}, nil
}

func (s *Service) Remove(ctx context.Context, ownerID, id string) (store.Source, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return "", err
	}

	source, err := s.venues.DeleteVenue(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to delete venue: %w", err)
	}

	s.logger.Info("venue removed", "venue_id", id, "owner_id", ownerID, "source", source)

	return source, nil
}

func (s *Service) owned(ctx context.Context, ownerID, id string) (store.Result[venue.Venue], error) {
	res, err := s.venues.GetVenue(ctx, id)
	if err != nil {
		return store.Result[venue.Venue]{}, err
	}

	if res.Value.OwnerID != ownerID {
		return store.Result[venue.Venue]{}, venue.ErrNotOwner
	}

	return res, nil
}
