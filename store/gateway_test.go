package store_test

import (
	"context"
	"errors"
	"testing"

	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/store"
	mock_store "github.com/hanksha/turf-booking-backend/store/mocks"
	"github.com/hanksha/turf-booking-backend/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errUnreachable = errors.New("dial tcp: connection refused")

type testDeps struct {
	remote  *mock_store.MockBackend
	local   *store.Local
	gateway *store.Gateway
	ctx     context.Context
}

func newTestDeps(t *testing.T) (*gomock.Controller, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	remote := mock_store.NewMockBackend(ctrl)
	local := newLocal(t)

	return ctrl, testDeps{
		remote:  remote,
		local:   local,
		gateway: store.NewGateway(remote, local),
		ctx:     context.Background(),
	}
}

func TestGatewayVenues(t *testing.T) {
	remoteVenues := []venue.Venue{{ID: "r1", Name: "Green Arena", OwnerID: "o1"}}

	t.Run("remote list refreshes the mirror", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.remote.EXPECT().ListVenues(deps.ctx).Return(remoteVenues, nil).Times(1)

		res, err := deps.gateway.ListVenues(deps.ctx)

		require.NoError(t, err)
		assert.Equal(t, store.SourceRemote, res.Source)
		assert.False(t, res.Degraded())
		assert.Equal(t, remoteVenues, res.Value)

		mirrored, err := deps.local.ListVenues(deps.ctx)
		require.NoError(t, err)
		require.Len(t, mirrored, 1)
		assert.Equal(t, "r1", mirrored[0].ID)
	})

	t.Run("remote failure serves the mirror", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		require.NoError(t, deps.local.ReplaceVenues(deps.ctx, remoteVenues))
		deps.remote.EXPECT().ListVenues(deps.ctx).Return(nil, errUnreachable).Times(1)

		res, err := deps.gateway.ListVenues(deps.ctx)

		require.NoError(t, err)
		assert.True(t, res.Degraded())
		require.Len(t, res.Value, 1)
		assert.Equal(t, "Green Arena", res.Value[0].Name)
	})

	t.Run("fallback round trip", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.remote.EXPECT().CreateVenue(deps.ctx, gomock.Any()).Return(venue.Venue{}, errUnreachable).Times(1)
		deps.remote.EXPECT().ListVenues(deps.ctx).Return(nil, errUnreachable).Times(1)

		in := venue.Venue{Name: "Night Court", Location: "HSR", PricePerHour: 800, Sports: []string{"Tennis"}, OwnerID: "o9"}
		created, err := deps.gateway.CreateVenue(deps.ctx, in)
		require.NoError(t, err)
		assert.Equal(t, store.SourceFallback, created.Source)

		listed, err := deps.gateway.ListVenues(deps.ctx)
		require.NoError(t, err)
		require.Len(t, listed.Value, 1)

		got := listed.Value[0]
		assert.Equal(t, created.Value.ID, got.ID)
		assert.Equal(t, in.Name, got.Name)
		assert.Equal(t, in.Location, got.Location)
		assert.Equal(t, in.PricePerHour, got.PricePerHour)
		assert.Equal(t, in.Sports, got.Sports)
		assert.Equal(t, in.OwnerID, got.OwnerID)
	})

	t.Run("not found is not an outage", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.remote.EXPECT().GetVenue(deps.ctx, "gone").Return(venue.Venue{}, venue.ErrVenueNotFound).Times(1)

		res, err := deps.gateway.GetVenue(deps.ctx, "gone")

		require.ErrorIs(t, err, venue.ErrVenueNotFound)
		assert.Equal(t, store.SourceRemote, res.Source)
	})

	t.Run("update falls back", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		require.NoError(t, deps.local.ReplaceVenues(deps.ctx, remoteVenues))
		name := "Renamed"
		patch := venue.Patch{Name: &name}
		deps.remote.EXPECT().UpdateVenue(deps.ctx, "r1", patch).Return(errUnreachable).Times(1)

		src, err := deps.gateway.UpdateVenue(deps.ctx, "r1", patch)

		require.NoError(t, err)
		assert.Equal(t, store.SourceFallback, src)
		got, err := deps.local.GetVenue(deps.ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})

	t.Run("owner cascade falls back", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		require.NoError(t, deps.local.ReplaceVenues(deps.ctx, remoteVenues))
		deps.remote.EXPECT().DeleteVenuesByOwner(deps.ctx, "o1").Return(0, errUnreachable).Times(1)

		res, err := deps.gateway.DeleteVenuesByOwner(deps.ctx, "o1")

		require.NoError(t, err)
		assert.Equal(t, 1, res.Value)
		assert.True(t, res.Degraded())
	})
}

func TestGatewayBookings(t *testing.T) {
	remoteBookings := []bk.Booking{upcoming("v1", "2025-03-01", "07:00 AM")}
	remoteBookings[0].ID = "b1"

	t.Run("unfiltered list refreshes the mirror", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.remote.EXPECT().ListBookings(deps.ctx, store.BookingFilter{}).Return(remoteBookings, nil).Times(1)

		_, err := deps.gateway.ListBookings(deps.ctx, store.BookingFilter{})
		require.NoError(t, err)

		mirrored, err := deps.local.GetBooking(deps.ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "v1", mirrored.VenueID)
	})

	t.Run("filtered list leaves the mirror alone", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		filter := store.BookingFilter{UserID: "player-1"}
		deps.remote.EXPECT().ListBookings(deps.ctx, filter).Return(remoteBookings, nil).Times(1)

		_, err := deps.gateway.ListBookings(deps.ctx, filter)
		require.NoError(t, err)

		mirrored, err := deps.local.ListBookings(deps.ctx, store.BookingFilter{})
		require.NoError(t, err)
		assert.Empty(t, mirrored)
	})

	t.Run("filtered fallback filters local data", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		other := upcoming("v2", "2025-03-02", "07:00 AM")
		other.ID = "b2"
		other.UserID = "player-2"
		require.NoError(t, deps.local.ReplaceBookings(deps.ctx, append(remoteBookings, other)))

		filter := store.BookingFilter{UserID: "player-2"}
		deps.remote.EXPECT().ListBookings(deps.ctx, filter).Return(nil, errUnreachable).Times(1)

		res, err := deps.gateway.ListBookings(deps.ctx, filter)

		require.NoError(t, err)
		assert.True(t, res.Degraded())
		require.Len(t, res.Value, 1)
		assert.Equal(t, "b2", res.Value[0].ID)
	})

	t.Run("conflict is returned without fallback", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.remote.EXPECT().CreateBooking(deps.ctx, gomock.Any()).Return(bk.Booking{}, bk.ErrSlotTaken).Times(1)

		_, err := deps.gateway.CreateBooking(deps.ctx, upcoming("v1", "2025-03-01", "07:00 AM"))

		require.ErrorIs(t, err, bk.ErrSlotTaken)
		local, err := deps.local.ListBookings(deps.ctx, store.BookingFilter{})
		require.NoError(t, err)
		assert.Empty(t, local)
	})

	t.Run("create falls back and keeps the slot guard", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.remote.EXPECT().CreateBooking(deps.ctx, gomock.Any()).Return(bk.Booking{}, errUnreachable).Times(2)

		first, err := deps.gateway.CreateBooking(deps.ctx, upcoming("v1", "2025-03-01", "07:00 AM"))
		require.NoError(t, err)
		assert.Equal(t, store.SourceFallback, first.Source)

		_, err = deps.gateway.CreateBooking(deps.ctx, upcoming("v1", "2025-03-01", "07:00 AM"))
		require.ErrorIs(t, err, bk.ErrSlotTaken)
	})

	t.Run("hard check falls back", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		require.NoError(t, deps.local.ReplaceBookings(deps.ctx, remoteBookings))
		deps.remote.EXPECT().IsSlotFree(deps.ctx, "v1", "2025-03-01", "07:00 AM").Return(false, errUnreachable).Times(1)

		res, err := deps.gateway.IsSlotFree(deps.ctx, "v1", "2025-03-01", "07:00 AM")

		require.NoError(t, err)
		assert.True(t, res.Degraded())
		assert.False(t, res.Value)
	})

	t.Run("cancelled caller does not fall back", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		ctx, cancel := context.WithCancel(deps.ctx)
		cancel()
		deps.remote.EXPECT().IsSlotFree(ctx, "v1", "2025-03-01", "07:00 AM").Return(false, ctx.Err()).Times(1)

		res, err := deps.gateway.IsSlotFree(ctx, "v1", "2025-03-01", "07:00 AM")

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, store.SourceRemote, res.Source)
	})

	t.Run("fallback miss reports not found", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.remote.EXPECT().GetBooking(deps.ctx, "b1").Return(bk.Booking{}, errUnreachable).Times(1)

		_, err := deps.gateway.GetBooking(deps.ctx, "b1")

		require.ErrorIs(t, err, bk.ErrBookingNotFound)
	})
}
