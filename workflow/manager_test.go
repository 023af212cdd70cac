package workflow_test

import (
	"testing"
	"time"

	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/hanksha/turf-booking-backend/venue"
	"github.com/hanksha/turf-booking-backend/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newManager(t *testing.T) (*gomock.Controller, testDeps, *workflow.Manager, string) {
	t.Helper()
	return newManagerWithDelay(t, 0)
}

func newManagerWithDelay(t *testing.T, delay time.Duration) (*gomock.Controller, testDeps, *workflow.Manager, string) {
	t.Helper()
	ctrl, deps := newTestDeps(t)
	if delay > 0 {
		deps.opts.SettlementDelay = delay
	}

	v := arena
	v.ID = ""
	created, err := deps.remote.CreateVenue(deps.ctx, v)
	require.NoError(t, err)

	return ctrl, deps, workflow.NewManager(deps.deps, deps.opts, time.Minute), created.ID
}

func TestManager(t *testing.T) {
	t.Run("start and book", func(t *testing.T) {
		ctrl, deps, m, venueID := newManager(t)
		defer ctrl.Finish()

		deps.enricher.EXPECT().BookingNote(gomock.Any(), "Green Arena", "Football").Return("Game on!").Times(1)
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		state, err := m.Start(deps.ctx, "player-1", "Asha", venueID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StageSelecting, state.Stage)
		assert.Equal(t, 1000.0, state.Price)

		_, err = m.Select("player-1", state.ID, today, "06:00 AM")
		require.NoError(t, err)

		state, err = m.ConfirmPayment(deps.ctx, "player-1", state.ID, card, true)
		require.NoError(t, err)
		require.Equal(t, workflow.StageDone, state.Stage)
		assert.Equal(t, "Game on!", state.Note)
		assert.Equal(t, "Asha", state.Booking.UserName)
	})

	t.Run("workflows are private to their user", func(t *testing.T) {
		ctrl, deps, m, venueID := newManager(t)
		defer ctrl.Finish()

		state, err := m.Start(deps.ctx, "player-1", "Asha", venueID)
		require.NoError(t, err)

		_, err = m.State("player-2", state.ID)
		assert.ErrorIs(t, err, workflow.ErrNotFound)
		_, err = m.Select("player-2", state.ID, today, "06:00 AM")
		assert.ErrorIs(t, err, workflow.ErrNotFound)
		assert.ErrorIs(t, m.Close("player-2", state.ID), workflow.ErrNotFound)
	})

	t.Run("unknown venue", func(t *testing.T) {
		ctrl, deps, m, _ := newManager(t)
		defer ctrl.Finish()

		_, err := m.Start(deps.ctx, "player-1", "Asha", "missing")
		assert.ErrorIs(t, err, venue.ErrVenueNotFound)
	})

	t.Run("lost slot refreshes the snapshot", func(t *testing.T) {
		ctrl, deps, m, venueID := newManager(t)
		defer ctrl.Finish()

		state, err := m.Start(deps.ctx, "player-1", "Asha", venueID)
		require.NoError(t, err)
		_, err = m.Select("player-1", state.ID, today, "06:00 AM")
		require.NoError(t, err)

		_, err = deps.remote.CreateBooking(deps.ctx, bk.Booking{
			VenueID: venueID, Date: today, TimeSlot: "06:00 AM", Status: bk.StatusUpcoming,
		})
		require.NoError(t, err)

		state, err = m.ConfirmPayment(deps.ctx, "player-1", state.ID, card, true)
		require.ErrorIs(t, err, bk.ErrSlotTaken)
		assert.Equal(t, workflow.StageSelecting, state.Stage)

		slots, err := m.Slots("player-1", state.ID, today)
		require.NoError(t, err)
		assert.False(t, slots[0].Available)

		_, err = m.Select("player-1", state.ID, today, "06:00 AM")
		assert.ErrorIs(t, err, bk.ErrSlotTaken)
	})

	t.Run("slot lost at commit refreshes the snapshot without waiting", func(t *testing.T) {
		ctrl, deps, m, venueID := newManagerWithDelay(t, 200*time.Millisecond)
		defer ctrl.Finish()

		deps.enricher.EXPECT().BookingNote(gomock.Any(), gomock.Any(), gomock.Any()).Return("note").AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		players := []string{"player-1", "player-2"}
		ids := make([]string, len(players))
		for i, player := range players {
			state, err := m.Start(deps.ctx, player, player, venueID)
			require.NoError(t, err)
			ids[i] = state.ID
			_, err = m.Select(player, state.ID, today, "06:00 PM")
			require.NoError(t, err)
		}

		for i, player := range players {
			state, err := m.ConfirmPayment(deps.ctx, player, ids[i], card, false)
			require.NoError(t, err)
			assert.Equal(t, workflow.StageSettling, state.Stage)
		}

		loser := -1
		for i, player := range players {
			state, err := m.Wait(deps.ctx, player, ids[i])
			require.NoError(t, err)
			if state.Stage == workflow.StageSelecting {
				assert.NotEmpty(t, state.Conflict)
				loser = i
			} else {
				assert.Equal(t, workflow.StageDone, state.Stage)
			}
		}
		require.NotEqual(t, -1, loser)

		slots, err := m.Slots(players[loser], ids[loser], today)
		require.NoError(t, err)
		for _, s := range slots {
			if s.TimeSlot == "06:00 PM" {
				assert.False(t, s.Available)
			}
		}

		_, err = m.Select(players[loser], ids[loser], today, "06:00 PM")
		assert.ErrorIs(t, err, bk.ErrSlotTaken)
	})

	t.Run("shutdown drains settlements", func(t *testing.T) {
		ctrl, deps, m, venueID := newManagerWithDelay(t, time.Hour)
		defer ctrl.Finish()

		deps.enricher.EXPECT().BookingNote(gomock.Any(), gomock.Any(), gomock.Any()).Return("note").AnyTimes()
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

		ids := map[string]string{}
		for _, player := range []string{"player-1", "player-2"} {
			state, err := m.Start(deps.ctx, player, player, venueID)
			require.NoError(t, err)
			ids[player] = state.ID
		}

		_, err := m.Select("player-1", ids["player-1"], today, "06:00 PM")
		require.NoError(t, err)
		state, err := m.ConfirmPayment(deps.ctx, "player-1", ids["player-1"], card, false)
		require.NoError(t, err)
		require.Equal(t, workflow.StageSettling, state.Stage)

		require.NoError(t, m.Shutdown(deps.ctx))

		for player, id := range ids {
			_, err := m.State(player, id)
			assert.ErrorIs(t, err, workflow.ErrNotFound)
		}

		bookings, err := deps.remote.ListBookings(deps.ctx, store.BookingFilter{VenueID: venueID})
		require.NoError(t, err)
		assert.Empty(t, bookings)
	})

	t.Run("close forgets the workflow", func(t *testing.T) {
		ctrl, deps, m, venueID := newManager(t)
		defer ctrl.Finish()

		state, err := m.Start(deps.ctx, "player-1", "Asha", venueID)
		require.NoError(t, err)

		require.NoError(t, m.Close("player-1", state.ID))

		_, err = m.State("player-1", state.ID)
		assert.ErrorIs(t, err, workflow.ErrNotFound)
	})

	t.Run("back and dates", func(t *testing.T) {
		ctrl, deps, m, venueID := newManager(t)
		defer ctrl.Finish()

		state, err := m.Start(deps.ctx, "player-1", "Asha", venueID)
		require.NoError(t, err)

		dates, err := m.Dates("player-1", state.ID)
		require.NoError(t, err)
		assert.Len(t, dates, 7)

		_, err = m.Select("player-1", state.ID, dates[3], "10:00 PM")
		require.NoError(t, err)
		state, err = m.Back("player-1", state.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StageSelecting, state.Stage)
	})
}
