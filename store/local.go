package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/venue"
	bolt "go.etcd.io/bbolt"
)

var (
	venuesBucket   = []byte("fallback_venues")
	bookingsBucket = []byte("fallback_bookings")
)

const (
	localVenuePrefix   = "local_"
	localBookingPrefix = "local_b_"
)

// Local is the durable fallback store. Each bolt write transaction is
// serialised, which makes the slot check and the insert in CreateBooking atomic.
type Local struct {
	db     *bolt.DB
	now    func() time.Time
	logger *slog.Logger
}

func OpenLocal(path string) (*Local, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback store %q: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{venuesBucket, bookingsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create fallback buckets: %w", err)
	}

	return &Local{db: db, now: time.Now, logger: slog.Default().With("component", "store.local")}, nil
}

func (l *Local) Close() error {
	return l.db.Close()
}

func readAll[T any](tx *bolt.Tx, bucket []byte) ([]T, error) {
	out := []T{}
	err := tx.Bucket(bucket).ForEach(func(_, raw []byte) error {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		out = append(out, item)
		return nil
	})
	return out, err
}

func readOne[T any](tx *bolt.Tx, bucket []byte, id string) (T, bool, error) {
	var item T
	raw := tx.Bucket(bucket).Get([]byte(id))
	if raw == nil {
		return item, false, nil
	}
	err := json.Unmarshal(raw, &item)
	return item, err == nil, err
}

func put(tx *bolt.Tx, bucket []byte, id string, item any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put([]byte(id), raw)
}

// replaceBucket swaps the bucket's contents for items. Records without an id
// cannot be keyed and are skipped so they never block a mirror refresh.
func replaceBucket[T any](tx *bolt.Tx, bucket []byte, items []T, id func(T) string) (int, error) {
	if err := tx.DeleteBucket(bucket); err != nil {
		return 0, err
	}
	if _, err := tx.CreateBucket(bucket); err != nil {
		return 0, err
	}
	skipped := 0
	for _, item := range items {
		key := id(item)
		if key == "" {
			skipped++
			continue
		}
		if err := put(tx, bucket, key, item); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

func (l *Local) ListVenues(ctx context.Context) ([]venue.Venue, error) {
	var venues []venue.Venue
	err := l.db.View(func(tx *bolt.Tx) error {
		var err error
		venues, err = readAll[venue.Venue](tx, venuesBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read local venues: %w", err)
	}

	sort.SliceStable(venues, func(i, j int) bool {
		return venues[i].CreatedAt.After(venues[j].CreatedAt)
	})

	return venues, nil
}

func (l *Local) GetVenue(ctx context.Context, id string) (venue.Venue, error) {
	var (
		v     venue.Venue
		found bool
	)
	err := l.db.View(func(tx *bolt.Tx) error {
		var err error
		v, found, err = readOne[venue.Venue](tx, venuesBucket, id)
		return err
	})
	if err != nil {
		return venue.Venue{}, fmt.Errorf("failed to read local venue %v: %w", id, err)
	}
	if !found {
		return venue.Venue{}, venue.ErrVenueNotFound
	}

	return v, nil
}

func (l *Local) CreateVenue(ctx context.Context, v venue.Venue) (venue.Venue, error) {
	v.ID = localVenuePrefix + uuid.NewString()
	v.CreatedAt = l.now().UTC()

	err := l.db.Update(func(tx *bolt.Tx) error {
		return put(tx, venuesBucket, v.ID, v)
	})
	if err != nil {
		return venue.Venue{}, fmt.Errorf("failed to write local venue: %w", err)
	}

	return v, nil
}

func (l *Local) UpdateVenue(ctx context.Context, id string, patch venue.Patch) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		v, found, err := readOne[venue.Venue](tx, venuesBucket, id)
		if err != nil {
			return fmt.Errorf("failed to read local venue %v: %w", id, err)
		}
		if !found {
			return venue.ErrVenueNotFound
		}
		return put(tx, venuesBucket, id, patch.Apply(v))
	})
}

func (l *Local) DeleteVenue(ctx context.Context, id string) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(venuesBucket)
		if b.Get([]byte(id)) == nil {
			return venue.ErrVenueNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (l *Local) DeleteVenuesByOwner(ctx context.Context, ownerID string) (int, error) {
	deleted := 0
	err := l.db.Update(func(tx *bolt.Tx) error {
		venues, err := readAll[venue.Venue](tx, venuesBucket)
		if err != nil {
			return err
		}
		b := tx.Bucket(venuesBucket)
		for _, v := range venues {
			if v.OwnerID != ownerID {
				continue
			}
			if err := b.Delete([]byte(v.ID)); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete local venues of owner %v: %w", ownerID, err)
	}

	return deleted, nil
}

func (l *Local) ListBookings(ctx context.Context, filter BookingFilter) ([]bk.Booking, error) {
	var all []bk.Booking
	err := l.db.View(func(tx *bolt.Tx) error {
		var err error
		all, err = readAll[bk.Booking](tx, bookingsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read local bookings: %w", err)
	}

	bookings := []bk.Booking{}
	for _, b := range all {
		if filter.Matches(b) {
			bookings = append(bookings, b)
		}
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date > bookings[j].Date
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	return bookings, nil
}

func (l *Local) GetBooking(ctx context.Context, id string) (bk.Booking, error) {
	var (
		b     bk.Booking
		found bool
	)
	err := l.db.View(func(tx *bolt.Tx) error {
		var err error
		b, found, err = readOne[bk.Booking](tx, bookingsBucket, id)
		return err
	})
	if err != nil {
		return bk.Booking{}, fmt.Errorf("failed to read local booking %v: %w", id, err)
	}
	if !found {
		return bk.Booking{}, bk.ErrBookingNotFound
	}

	return b, nil
}

func (l *Local) CreateBooking(ctx context.Context, b bk.Booking) (bk.Booking, error) {
	b.ID = localBookingPrefix + uuid.NewString()

	err := l.db.Update(func(tx *bolt.Tx) error {
		existing, err := readAll[bk.Booking](tx, bookingsBucket)
		if err != nil {
			return fmt.Errorf("failed to read local bookings: %w", err)
		}
		if b.Status == bk.StatusUpcoming && !bk.SlotFree(existing, b.VenueID, b.Date, b.TimeSlot) {
			return bk.ErrSlotTaken
		}
		return put(tx, bookingsBucket, b.ID, b)
	})
	if err != nil {
		return bk.Booking{}, err
	}

	return b, nil
}

func (l *Local) UpdateBookingStatus(ctx context.Context, id string, status bk.Status) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b, found, err := readOne[bk.Booking](tx, bookingsBucket, id)
		if err != nil {
			return fmt.Errorf("failed to read local booking %v: %w", id, err)
		}
		if !found {
			return bk.ErrBookingNotFound
		}
		b.Status = status
		return put(tx, bookingsBucket, id, b)
	})
}

func (l *Local) DeleteBooking(ctx context.Context, id string) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bookingsBucket)
		if b.Get([]byte(id)) == nil {
			return bk.ErrBookingNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (l *Local) IsSlotFree(ctx context.Context, venueID, date, slot string) (bool, error) {
	bookings, err := l.ListBookings(ctx, BookingFilter{VenueID: venueID})
	if err != nil {
		return false, err
	}
	return bk.SlotFree(bookings, venueID, date, slot), nil
}

func (l *Local) ReplaceVenues(ctx context.Context, venues []venue.Venue) error {
	var skipped int
	err := l.db.Update(func(tx *bolt.Tx) error {
		var err error
		skipped, err = replaceBucket(tx, venuesBucket, venues, func(v venue.Venue) string { return v.ID })
		return err
	})
	if skipped > 0 {
		l.logger.Warn("skipped venues without id while refreshing mirror", "count", skipped)
	}
	return err
}

func (l *Local) ReplaceBookings(ctx context.Context, bookings []bk.Booking) error {
	var skipped int
	err := l.db.Update(func(tx *bolt.Tx) error {
		var err error
		skipped, err = replaceBucket(tx, bookingsBucket, bookings, func(b bk.Booking) string { return b.ID })
		return err
	})
	if skipped > 0 {
		l.logger.Warn("skipped bookings without id while refreshing mirror", "count", skipped)
	}
	return err
}
