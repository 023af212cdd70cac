package store

import (
	"context"
	"errors"
	"fmt"

	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/venue"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct{ pool *pgxpool.Pool }

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const venueColumns = `id, name, description, location, rating, price_per_hour, image, sports, amenities, owner_id, created_at`

const bookingColumns = `id, venue_id, user_id, user_name, date, time_slot, status, total_price, payment_status, created_at`

func scanVenue(row pgx.Row) (venue.Venue, error) {
	var v venue.Venue
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Description,
		&v.Location,
		&v.Rating,
		&v.PricePerHour,
		&v.Image,
		&v.Sports,
		&v.Amenities,
		&v.OwnerID,
		&v.CreatedAt,
	)
	return v, err
}

func scanBooking(row pgx.Row) (bk.Booking, error) {
	var b bk.Booking
	err := row.Scan(
		&b.ID,
		&b.VenueID,
		&b.UserID,
		&b.UserName,
		&b.Date,
		&b.TimeSlot,
		&b.Status,
		&b.TotalPrice,
		&b.PaymentStatus,
		&b.CreatedAt,
	)
	return b, err
}

func (r *Postgres) ListVenues(ctx context.Context) ([]venue.Venue, error) {
	sql := `SELECT ` + venueColumns + ` FROM turf.venues ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, sql)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch venues: %w", err)
	}

	defer rows.Close()

	venues := []venue.Venue{}

	for rows.Next() {
		v, err := scanVenue(rows)

		if err != nil {
			return nil, fmt.Errorf("error scanning venue row: %w", err)
		}

		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venue rows: %w", err)
	}

	return venues, nil
}

func (r *Postgres) GetVenue(ctx context.Context, id string) (venue.Venue, error) {
	sql := `SELECT ` + venueColumns + ` FROM turf.venues WHERE id=$1;`

	v, err := scanVenue(r.pool.QueryRow(ctx, sql, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return venue.Venue{}, venue.ErrVenueNotFound
	}

	if err != nil {
		return venue.Venue{}, fmt.Errorf("failed to fetch venue with id %v: %w", id, err)
	}

	return v, nil
}

func (r *Postgres) CreateVenue(ctx context.Context, v venue.Venue) (venue.Venue, error) {
	sql := `
			INSERT INTO turf.venues(
			name, description, location, rating, price_per_hour, image, sports, amenities, owner_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at;
		`

	err := r.pool.QueryRow(ctx, sql,
		v.Name,
		v.Description,
		v.Location,
		v.Rating,
		v.PricePerHour,
		v.Image,
		v.Sports,
		v.Amenities,
		v.OwnerID,
	).Scan(&v.ID, &v.CreatedAt)

	if err != nil {
		return venue.Venue{}, fmt.Errorf("failed to insert venue: %w", err)
	}

	return v, nil
}

func (r *Postgres) UpdateVenue(ctx context.Context, id string, patch venue.Patch) error {
	sql := `
			UPDATE turf.venues
			SET
				name=COALESCE($1, name),
				description=COALESCE($2, description),
				location=COALESCE($3, location),
				price_per_hour=COALESCE($4, price_per_hour),
				image=COALESCE($5, image),
				sports=COALESCE($6, sports),
				amenities=COALESCE($7, amenities)
			WHERE id=$8;
		`

	tag, err := r.pool.Exec(ctx, sql,
		patch.Name,
		patch.Description,
		patch.Location,
		patch.PricePerHour,
		patch.Image,
		patch.Sports,
		patch.Amenities,
		id,
	)

	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return venue.ErrVenueNotFound
	}

	return nil
}

func (r *Postgres) DeleteVenue(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM turf.venues WHERE id=$1;`, id)

	if err != nil {
		return fmt.Errorf("failed to delete venue '%v': %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return venue.ErrVenueNotFound
	}

	return nil
}

func (r *Postgres) DeleteVenuesByOwner(ctx context.Context, ownerID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM turf.venues WHERE owner_id=$1;`, ownerID)

	if err != nil {
		return 0, fmt.Errorf("failed to delete venues of owner '%v': %w", ownerID, err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *Postgres) ListBookings(ctx context.Context, filter BookingFilter) ([]bk.Booking, error) {
	sql := `
            SELECT ` + bookingColumns + `
            FROM turf.bookings
            WHERE ($1 = '' OR user_id=$1) AND ($2 = '' OR venue_id=$2)
            ORDER BY date DESC, created_at DESC;
        `

	rows, err := r.pool.Query(ctx, sql, filter.UserID, filter.VenueID)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	defer rows.Close()

	bookings := []bk.Booking{}

	for rows.Next() {
		b, err := scanBooking(rows)

		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings rows: %w", err)
	}

	return bookings, nil
}

func (r *Postgres) GetBooking(ctx context.Context, id string) (bk.Booking, error) {
	sql := `SELECT ` + bookingColumns + ` FROM turf.bookings WHERE id=$1;`

	b, err := scanBooking(r.pool.QueryRow(ctx, sql, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return bk.Booking{}, bk.ErrBookingNotFound
	}

	if err != nil {
		return bk.Booking{}, fmt.Errorf("failed to fetch booking with id %v: %w", id, err)
	}

	return b, nil
}

// CreateBooking relies on the partial unique index over upcoming bookings: a
// conflicting insert returns no row instead of failing.
func (r *Postgres) CreateBooking(ctx context.Context, b bk.Booking) (bk.Booking, error) {
	sql := `
			INSERT INTO turf.bookings(
			venue_id, user_id, user_name, date, time_slot, status, total_price, payment_status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (venue_id, date, time_slot) WHERE status = 'upcoming' DO NOTHING
			RETURNING id;
		`

	err := r.pool.QueryRow(ctx, sql,
		b.VenueID,
		b.UserID,
		b.UserName,
		b.Date,
		b.TimeSlot,
		b.Status,
		b.TotalPrice,
		b.PaymentStatus,
		b.CreatedAt,
	).Scan(&b.ID)

	if errors.Is(err, pgx.ErrNoRows) {
		return bk.Booking{}, bk.ErrSlotTaken
	}

	if err != nil {
		return bk.Booking{}, fmt.Errorf("failed to insert booking: %w", err)
	}

	return b, nil
}

func (r *Postgres) UpdateBookingStatus(ctx context.Context, id string, status bk.Status) error {
	sql := `
            UPDATE turf.bookings
            SET status=$1
            WHERE id=$2;
        `

	tag, err := r.pool.Exec(ctx, sql, status, id)

	if err != nil {
		return fmt.Errorf("failed to update booking '%v' status: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return bk.ErrBookingNotFound
	}

	return nil
}

func (r *Postgres) DeleteBooking(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM turf.bookings WHERE id=$1;`, id)

	if err != nil {
		return fmt.Errorf("failed to delete booking '%v': %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return bk.ErrBookingNotFound
	}

	return nil
}

func (r *Postgres) IsSlotFree(ctx context.Context, venueID, date, slot string) (bool, error) {
	sql := `
		SELECT NOT EXISTS (
			SELECT 1 FROM turf.bookings
			WHERE venue_id=$1 AND date=$2 AND time_slot=$3 AND status='upcoming'
		);
	`

	var free bool
	err := r.pool.QueryRow(ctx, sql, venueID, date, slot).Scan(&free)

	if err != nil {
		return false, fmt.Errorf("failed to check slot availability: %w", err)
	}

	return free, nil
}
