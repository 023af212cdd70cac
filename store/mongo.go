package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/venue"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	venuesCollection   = "venues"
	bookingsCollection = "bookings"
)

type Mongo struct {
	venues   *mongo.Collection
	bookings *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		venues:   db.Collection(venuesCollection),
		bookings: db.Collection(bookingsCollection),
	}
}

// EnsureIndexes creates the partial unique index that keeps one upcoming
// booking per slot. Safe to call on every start.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "venueId", Value: 1}, {Key: "date", Value: 1}, {Key: "timeSlot", Value: 1}},
			Options: options.Index().
				SetName("active_slot").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(bk.StatusUpcoming)}),
		},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	_, err = m.venues.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}}})
	if err != nil {
		return fmt.Errorf("failed to create venue indexes: %w", err)
	}

	return nil
}

func (m *Mongo) ListVenues(ctx context.Context) ([]venue.Venue, error) {
	cur, err := m.venues.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venues: %w", err)
	}

	venues := []venue.Venue{}
	if err := cur.All(ctx, &venues); err != nil {
		return nil, fmt.Errorf("failed to decode venues: %w", err)
	}

	return venues, nil
}

func (m *Mongo) GetVenue(ctx context.Context, id string) (venue.Venue, error) {
	var v venue.Venue
	err := m.venues.FindOne(ctx, bson.M{"_id": id}).Decode(&v)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return venue.Venue{}, venue.ErrVenueNotFound
	}
	if err != nil {
		return venue.Venue{}, fmt.Errorf("failed to fetch venue with id %v: %w", id, err)
	}

	return v, nil
}

func (m *Mongo) CreateVenue(ctx context.Context, v venue.Venue) (venue.Venue, error) {
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now().UTC()

	if _, err := m.venues.InsertOne(ctx, v); err != nil {
		return venue.Venue{}, fmt.Errorf("failed to insert venue: %w", err)
	}

	return v, nil
}

func venuePatchDoc(p venue.Patch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.PricePerHour != nil {
		set["pricePerHour"] = *p.PricePerHour
	}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Sports != nil {
		set["sports"] = p.Sports
	}
	if p.Amenities != nil {
		set["amenities"] = p.Amenities
	}
	return set
}

func (m *Mongo) UpdateVenue(ctx context.Context, id string, patch venue.Patch) error {
	set := venuePatchDoc(patch)
	if len(set) == 0 {
		_, err := m.GetVenue(ctx, id)
		return err
	}

	res, err := m.venues.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}
	if res.MatchedCount == 0 {
		return venue.ErrVenueNotFound
	}

	return nil
}

func (m *Mongo) DeleteVenue(ctx context.Context, id string) error {
	res, err := m.venues.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete venue '%v': %w", id, err)
	}
	if res.DeletedCount == 0 {
		return venue.ErrVenueNotFound
	}

	return nil
}

func (m *Mongo) DeleteVenuesByOwner(ctx context.Context, ownerID string) (int, error) {
	res, err := m.venues.DeleteMany(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete venues of owner '%v': %w", ownerID, err)
	}

	return int(res.DeletedCount), nil
}

func bookingFilterDoc(f BookingFilter) bson.M {
	doc := bson.M{}
	if f.UserID != "" {
		doc["userId"] = f.UserID
	}
	if f.VenueID != "" {
		doc["venueId"] = f.VenueID
	}
	return doc
}

func (m *Mongo) ListBookings(ctx context.Context, filter BookingFilter) ([]bk.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})

	cur, err := m.bookings.Find(ctx, bookingFilterDoc(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	bookings := []bk.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (m *Mongo) GetBooking(ctx context.Context, id string) (bk.Booking, error) {
	var b bk.Booking
	err := m.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&b)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return bk.Booking{}, bk.ErrBookingNotFound
	}
	if err != nil {
		return bk.Booking{}, fmt.Errorf("failed to fetch booking with id %v: %w", id, err)
	}

	return b, nil
}

func (m *Mongo) CreateBooking(ctx context.Context, b bk.Booking) (bk.Booking, error) {
	b.ID = uuid.NewString()

	_, err := m.bookings.InsertOne(ctx, b)

	if mongo.IsDuplicateKeyError(err) {
		return bk.Booking{}, bk.ErrSlotTaken
	}
	if err != nil {
		return bk.Booking{}, fmt.Errorf("failed to insert booking: %w", err)
	}

	return b, nil
}

func (m *Mongo) UpdateBookingStatus(ctx context.Context, id string, status bk.Status) error {
	res, err := m.bookings.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})

	if mongo.IsDuplicateKeyError(err) {
		return bk.ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update booking '%v' status: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return bk.ErrBookingNotFound
	}

	return nil
}

func (m *Mongo) DeleteBooking(ctx context.Context, id string) error {
	res, err := m.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking '%v': %w", id, err)
	}
	if res.DeletedCount == 0 {
		return bk.ErrBookingNotFound
	}

	return nil
}

func (m *Mongo) IsSlotFree(ctx context.Context, venueID, date, slot string) (bool, error) {
	n, err := m.bookings.CountDocuments(ctx, bson.M{
		"venueId":  venueID,
		"date":     date,
		"timeSlot": slot,
		"status":   string(bk.StatusUpcoming),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check slot availability: %w", err)
	}

	return n == 0, nil
}
