// Package workflow drives a single reservation from slot selection through
// payment and settlement to a committed booking.
//
//	selecting -> confirming-payment -> settling -> done
//	    ^               |                 |
//	    +---- back -----+                 |
//	    +------- slot lost at commit -----+
//
// Any stage can be closed. Closing before commit persists nothing; closing
// while the commit is in flight rolls the created booking back to cancelled.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hanksha/turf-booking-backend/availability"
	bk "github.com/hanksha/turf-booking-backend/booking"
	"github.com/hanksha/turf-booking-backend/events"
	"github.com/hanksha/turf-booking-backend/metrics"
	"github.com/hanksha/turf-booking-backend/store"
	"github.com/hanksha/turf-booking-backend/venue"
)

const noteGrace = 2 * time.Second

type Stage string

const (
	StageSelecting         Stage = "selecting"
	StageConfirmingPayment Stage = "confirming-payment"
	StageSettling          Stage = "settling"
	StageDone              Stage = "done"
	StageClosed            Stage = "closed"
)

type Gateway interface {
	GetVenue(ctx context.Context, id string) (store.Result[venue.Venue], error)
	ListBookings(ctx context.Context, filter store.BookingFilter) (store.Result[[]bk.Booking], error)
	CreateBooking(ctx context.Context, b bk.Booking) (store.Result[bk.Booking], error)
	UpdateBookingStatus(ctx context.Context, id string, status bk.Status) (store.Source, error)
	IsSlotFree(ctx context.Context, venueID, date, slot string) (store.Result[bool], error)
}

type Enricher interface {
	BookingNote(ctx context.Context, venueName, sport string) string
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type SlotHolder interface {
	Acquire(ctx context.Context, venueID, date, slot, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, venueID, date, slot, token string) error
}

type Deps struct {
	Gateway   Gateway
	Enricher  Enricher
	Publisher EventPublisher
	Holder    SlotHolder
}

type Options struct {
	SettlementDelay time.Duration
	WindowDays      int
	HoldTTL         time.Duration
	Now             func() time.Time
}

func (o Options) withDefaults() Options {
	if o.WindowDays <= 0 {
		o.WindowDays = 7
	}
	if o.HoldTTL <= 0 {
		o.HoldTTL = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type PaymentDetails struct {
	CardHolder string `json:"cardHolder"`
	CardNumber string `json:"cardNumber"`
}

// State is a point-in-time copy of a workflow, safe to serialise.
type State struct {
	ID        string       `json:"id"`
	VenueID   string       `json:"venueId"`
	VenueName string       `json:"venueName"`
	Price     float64      `json:"price"`
	Stage     Stage        `json:"stage"`
	Date      string       `json:"date,omitempty"`
	TimeSlot  string       `json:"timeSlot,omitempty"`
	Note      string       `json:"note,omitempty"`
	Conflict  string       `json:"conflict,omitempty"`
	Failure   string       `json:"failure,omitempty"`
	Booking   *bk.Booking  `json:"booking,omitempty"`
	Source    store.Source `json:"source,omitempty"`
}

type Workflow struct {
	id       string
	userID   string
	userName string
	venue    venue.Venue
	deps     Deps
	checker  *availability.Checker
	opts     Options
	logger   *slog.Logger

	mu         sync.Mutex
	snapshot   []bk.Booking
	stage      Stage
	date       string
	slot       string
	note       string
	conflict   string
	failure    string
	committed  *bk.Booking
	source     store.Source
	confirming bool
	cancel     context.CancelFunc
	finished   chan struct{}
}

func New(id, userID, userName string, v venue.Venue, snapshot []bk.Booking, deps Deps, opts Options) *Workflow {
	return &Workflow{
		id:       id,
		userID:   userID,
		userName: userName,
		venue:    v,
		deps:     deps,
		checker:  availability.NewChecker(deps.Gateway),
		opts:     opts.withDefaults(),
		logger:   slog.Default().With("component", "workflow", "workflow_id", id),
		snapshot: snapshot,
		stage:    StageSelecting,
	}
}

func (w *Workflow) ID() string { return w.id }

func (w *Workflow) UserID() string { return w.userID }

func (w *Workflow) VenueID() string { return w.venue.ID }

func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Workflow) stateLocked() State {
	s := State{
		ID:        w.id,
		VenueID:   w.venue.ID,
		VenueName: w.venue.Name,
		Price:     w.venue.PricePerHour,
		Stage:     w.stage,
		Date:      w.date,
		TimeSlot:  w.slot,
		Note:      w.note,
		Conflict:  w.conflict,
		Failure:   w.failure,
		Source:    w.source,
	}
	if w.committed != nil {
		b := *w.committed
		s.Booking = &b
	}
	return s
}

// Refresh replaces the booking snapshot used by soft checks.
func (w *Workflow) Refresh(bookings []bk.Booking) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshot = bookings
}

// Reload refreshes the snapshot from the gateway. A failed load keeps the old
// snapshot; the hard check still guards the commit.
func (w *Workflow) Reload(ctx context.Context) {
	res, err := w.deps.Gateway.ListBookings(ctx, store.BookingFilter{VenueID: w.venue.ID})
	if err != nil {
		w.logger.Warn("failed to refresh booking snapshot", "err", err)
		return
	}
	w.Refresh(res.Value)
}

// AvailableSlots reports the soft availability of every slot on date.
func (w *Workflow) AvailableSlots(date string) []availability.SlotState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.checker.Slots(w.snapshot, w.venue.ID, date)
}

// Dates lists the selectable dates, starting today.
func (w *Workflow) Dates() []string {
	today := w.opts.Now()
	dates := make([]string, 0, w.opts.WindowDays)
	for i := range w.opts.WindowDays {
		dates = append(dates, today.AddDate(0, 0, i).Format(time.DateOnly))
	}
	return dates
}

func (w *Workflow) inWindow(date string) bool {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil || d.Format(time.DateOnly) != date {
		return false
	}

	now := w.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last := today.AddDate(0, 0, w.opts.WindowDays-1)

	return !d.Before(today) && !d.After(last)
}

func (w *Workflow) Select(date, slot string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != StageSelecting {
		return fmt.Errorf("%w: cannot select a slot while %s", ErrInvalidStage, w.stage)
	}

	if !w.inWindow(date) || !bk.IsSlot(slot) {
		return ErrInvalidSelection
	}

	if !w.checker.Soft(w.snapshot, w.venue.ID, date, slot) {
		w.conflict = bk.ErrSlotTaken.Error()
		return bk.ErrSlotTaken
	}

	w.date = date
	w.slot = slot
	w.conflict = ""
	w.failure = ""
	w.stage = StageConfirmingPayment

	return nil
}

func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stage != StageConfirmingPayment {
		return fmt.Errorf("%w: cannot go back while %s", ErrInvalidStage, w.stage)
	}

	w.stage = StageSelecting
	return nil
}

// revertLocked sends the workflow back to selecting after losing the slot.
func (w *Workflow) revertLocked() {
	w.stage = StageSelecting
	w.slot = ""
	w.conflict = bk.ErrSlotTaken.Error()
}

// ConfirmPayment runs the hard check and, when the slot is still free, starts
// settlement. It returns as soon as settlement has started. The lock is not
// held across the hard check or the hold so the workflow stays readable and
// closable meanwhile.
func (w *Workflow) ConfirmPayment(ctx context.Context, details PaymentDetails) error {
	w.mu.Lock()
	if w.stage != StageConfirmingPayment || w.confirming {
		stage := w.stage
		w.mu.Unlock()
		return fmt.Errorf("%w: cannot pay while %s", ErrInvalidStage, stage)
	}

	if strings.TrimSpace(details.CardHolder) == "" || strings.TrimSpace(details.CardNumber) == "" {
		w.mu.Unlock()
		return ErrInvalidPayment
	}

	date, slot := w.date, w.slot
	w.confirming = true
	w.mu.Unlock()

	res, err := w.checker.Hard(ctx, w.venue.ID, date, slot)
	if err != nil {
		w.mu.Lock()
		w.confirming = false
		w.mu.Unlock()
		return fmt.Errorf("failed to verify slot availability: %w", err)
	}

	free, held := res.Value, false
	if free && w.deps.Holder != nil {
		ok, err := w.deps.Holder.Acquire(ctx, w.venue.ID, date, slot, w.id, w.opts.HoldTTL)
		switch {
		case err != nil:
			w.logger.Warn("slot hold unavailable, relying on conditional insert", "err", err)
		case !ok:
			metrics.SlotConflicts.WithLabelValues("hold").Inc()
			free = false
		default:
			held = true
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.confirming = false

	if w.stage != StageConfirmingPayment || w.date != date || w.slot != slot {
		if held {
			go w.releaseHold(date, slot, true)
		}
		return fmt.Errorf("%w: workflow changed to %s during payment", ErrInvalidStage, w.stage)
	}

	w.source = res.Source

	if !free {
		w.revertLocked()
		return bk.ErrSlotTaken
	}

	settleCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.finished = make(chan struct{})
	w.stage = StageSettling
	w.failure = ""

	go w.settle(settleCtx, date, slot, held, w.finished)

	return nil
}

func (w *Workflow) settle(ctx context.Context, date, slot string, held bool, finished chan struct{}) {
	defer close(finished)
	noteDone := w.enrich(ctx)
	defer func() { <-noteDone }()
	defer w.releaseHold(date, slot, held)

	timer := time.NewTimer(w.opts.SettlementDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		metrics.WorkflowOutcomes.WithLabelValues("aborted").Inc()
		return
	case <-timer.C:
	}

	w.mu.Lock()
	if w.stage != StageSettling {
		w.mu.Unlock()
		metrics.WorkflowOutcomes.WithLabelValues("aborted").Inc()
		return
	}
	b := bk.Booking{
		VenueID:       w.venue.ID,
		UserID:        w.userID,
		UserName:      w.userName,
		Date:          date,
		TimeSlot:      slot,
		Status:        bk.StatusUpcoming,
		TotalPrice:    w.venue.PricePerHour,
		PaymentStatus: bk.PaymentPaid,
		CreatedAt:     w.opts.Now().UTC(),
	}
	w.mu.Unlock()

	// The commit ignores cancellation so it either lands fully or not at all.
	commitCtx := context.WithoutCancel(ctx)
	res, err := w.deps.Gateway.CreateBooking(commitCtx, b)

	w.mu.Lock()
	closed := w.stage == StageClosed

	switch {
	case err != nil && errors.Is(err, bk.ErrSlotTaken):
		metrics.SlotConflicts.WithLabelValues("commit").Inc()
		metrics.WorkflowOutcomes.WithLabelValues("conflict").Inc()
		if !closed {
			w.revertLocked()
		}
		w.mu.Unlock()
		if !closed {
			w.Reload(commitCtx)
		}
		return

	case err != nil:
		w.logger.Error("failed to commit booking", "err", err)
		metrics.WorkflowOutcomes.WithLabelValues("failed").Inc()
		if !closed {
			w.stage = StageConfirmingPayment
			w.failure = "failed to save booking, please try again"
		}
		w.mu.Unlock()
		return

	case closed:
		w.mu.Unlock()
		w.rollback(commitCtx, res.Value)
		return
	}

	created := res.Value
	w.committed = &created
	w.source = res.Source
	w.stage = StageDone
	w.mu.Unlock()

	metrics.WorkflowOutcomes.WithLabelValues("committed").Inc()
	w.logger.Info("booking committed", "booking_id", created.ID, "source", res.Source)

	if w.deps.Publisher != nil {
		if err := w.deps.Publisher.Publish(commitCtx, events.NewBookingEvent(events.BookingConfirmed, created)); err != nil {
			w.logger.Warn("failed to publish booking event", "err", err)
		}
	}
}

// enrich fetches the booking note alongside settlement. It is bounded so a
// slow collaborator cannot hold up the end of settlement for long.
func (w *Workflow) enrich(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if w.deps.Enricher == nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(ctx, w.opts.SettlementDelay+noteGrace)
		defer cancel()

		note := w.deps.Enricher.BookingNote(ctx, w.venue.Name, firstSport(w.venue))

		w.mu.Lock()
		w.note = note
		w.mu.Unlock()
	}()

	return done
}

func (w *Workflow) rollback(ctx context.Context, created bk.Booking) {
	metrics.WorkflowOutcomes.WithLabelValues("rolled_back").Inc()
	if _, err := w.deps.Gateway.UpdateBookingStatus(ctx, created.ID, bk.StatusCancelled); err != nil {
		w.logger.Error("failed to roll back booking after close", "booking_id", created.ID, "err", err)
		return
	}
	w.logger.Info("booking rolled back after close", "booking_id", created.ID)
}

func (w *Workflow) releaseHold(date, slot string, held bool) {
	if !held || w.deps.Holder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.deps.Holder.Release(ctx, w.venue.ID, date, slot, w.id); err != nil {
		w.logger.Warn("failed to release slot hold", "err", err)
	}
}

// Close discards the workflow. It never blocks on an in-flight commit.
func (w *Workflow) Close() {
	w.mu.Lock()
	if w.stage == StageClosed {
		w.mu.Unlock()
		return
	}
	w.stage = StageClosed
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Wait blocks until a started settlement has finished.
func (w *Workflow) Wait(ctx context.Context) error {
	w.mu.Lock()
	finished := w.finished
	w.mu.Unlock()

	if finished == nil {
		return nil
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func firstSport(v venue.Venue) string {
	if len(v.Sports) == 0 {
		return "sports"
	}
	return v.Sports[0]
}
