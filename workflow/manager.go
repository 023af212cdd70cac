package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hanksha/turf-booking-backend/availability"
	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/patrickmn/go-cache"
)

// Manager keeps the live workflows of all users. Idle workflows expire after
// the configured TTL and are closed on eviction.
type Manager struct {
	deps      Deps
	opts      Options
	workflows *cache.Cache
	logger    *slog.Logger
}

func NewManager(deps Deps, opts Options, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	workflows := cache.New(ttl, ttl/2)
	workflows.OnEvicted(func(_ string, item any) {
		item.(*Workflow).Close()
	})

	return &Manager{
		deps:      deps,
		opts:      opts,
		workflows: workflows,
		logger:    slog.Default().With("component", "workflow"),
	}
}

func (m *Manager) loadSnapshot(ctx context.Context, venueID string) ([]bk.Booking, error) {
	res, err := m.deps.Gateway.ListBookings(ctx, store.BookingFilter{VenueID: venueID})
	if err != nil {
		return nil, fmt.Errorf("failed to load venue bookings: %w", err)
	}
	return res.Value, nil
}

// Start opens a workflow for venueID with a fresh booking snapshot.
func (m *Manager) Start(ctx context.Context, userID, userName, venueID string) (State, error) {
	v, err := m.deps.Gateway.GetVenue(ctx, venueID)
	if err != nil {
		return State{}, err
	}

	snapshot, err := m.loadSnapshot(ctx, venueID)
	if err != nil {
		return State{}, err
	}

	w := New(uuid.NewString(), userID, userName, v.Value, snapshot, m.deps, m.opts)
	m.workflows.SetDefault(w.ID(), w)

	m.logger.Info("workflow started", "workflow_id", w.ID(), "venue_id", venueID, "user_id", userID)

	return w.Snapshot(), nil
}

// get returns the workflow only to the user that started it.
func (m *Manager) get(userID, id string) (*Workflow, error) {
	item, found := m.workflows.Get(id)
	if !found {
		return nil, ErrNotFound
	}

	w := item.(*Workflow)
	if w.UserID() != userID {
		return nil, ErrNotFound
	}

	m.workflows.SetDefault(id, w)

	return w, nil
}

func (m *Manager) State(userID, id string) (State, error) {
	w, err := m.get(userID, id)
	if err != nil {
		return State{}, err
	}
	return w.Snapshot(), nil
}

func (m *Manager) Dates(userID, id string) ([]string, error) {
	w, err := m.get(userID, id)
	if err != nil {
		return nil, err
	}
	return w.Dates(), nil
}

func (m *Manager) Slots(userID, id, date string) ([]availability.SlotState, error) {
	w, err := m.get(userID, id)
	if err != nil {
		return nil, err
	}
	return w.AvailableSlots(date), nil
}

func (m *Manager) Select(userID, id, date, slot string) (State, error) {
	w, err := m.get(userID, id)
	if err != nil {
		return State{}, err
	}

	err = w.Select(date, slot)
	return w.Snapshot(), err
}

func (m *Manager) Back(userID, id string) (State, error) {
	w, err := m.get(userID, id)
	if err != nil {
		return State{}, err
	}

	err = w.Back()
	return w.Snapshot(), err
}

// ConfirmPayment starts settlement. When wait is set it returns only after the
// commit has resolved. A lost slot refreshes the workflow's snapshot.
func (m *Manager) ConfirmPayment(ctx context.Context, userID, id string, details PaymentDetails, wait bool) (State, error) {
	w, err := m.get(userID, id)
	if err != nil {
		return State{}, err
	}

	err = w.ConfirmPayment(ctx, details)
	if errors.Is(err, bk.ErrSlotTaken) {
		w.Reload(ctx)
		return w.Snapshot(), err
	}
	if err != nil {
		return w.Snapshot(), err
	}

	if wait {
		if err := w.Wait(ctx); err != nil {
			return w.Snapshot(), err
		}
		// A slot lost at commit has already reloaded the snapshot.
		if state := w.Snapshot(); state.Stage == StageSelecting && state.Conflict != "" {
			return state, bk.ErrSlotTaken
		}
	}

	return w.Snapshot(), nil
}

func (m *Manager) Close(userID, id string) error {
	w, err := m.get(userID, id)
	if err != nil {
		return err
	}

	w.Close()
	m.workflows.Delete(id)

	return nil
}

// Wait blocks until the workflow's settlement, if any, has finished.
func (m *Manager) Wait(ctx context.Context, userID, id string) (State, error) {
	w, err := m.get(userID, id)
	if err != nil {
		return State{}, err
	}

	err = w.Wait(ctx)
	return w.Snapshot(), err
}

// Shutdown closes every live workflow and waits for in-flight settlements to
// finish, so no commit or rollback outlives the stores it writes to.
func (m *Manager) Shutdown(ctx context.Context) error {
	items := m.workflows.Items()
	m.workflows.Flush()

	for _, item := range items {
		item.Object.(*Workflow).Close()
	}

	for id, item := range items {
		if err := item.Object.(*Workflow).Wait(ctx); err != nil {
			return fmt.Errorf("workflow %s did not finish: %w", id, err)
		}
	}

	m.logger.Info("workflows shut down", "count", len(items))

	return nil
}
