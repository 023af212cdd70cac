package booking

import (
	"slices"
	"time"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Booking struct {
	ID            string        `json:"id" bson:"_id"`
	VenueID       string        `json:"venueId" bson:"venueId"`
	UserID        string        `json:"userId" bson:"userId"`
	UserName      string        `json:"userName" bson:"userName"`
	Date          string        `json:"date" bson:"date"` // YYYY-MM-DD, compared as a plain string
	TimeSlot      string        `json:"timeSlot" bson:"timeSlot"`
	Status        Status        `json:"status" bson:"status"`
	TotalPrice    float64       `json:"totalPrice" bson:"totalPrice"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// Slots is the fixed set of bookable one-hour slots offered for every venue and date.
var Slots = []string{
	"06:00 AM", "07:00 AM", "08:00 AM", "09:00 AM", "10:00 AM", "11:00 AM",
	"12:00 PM", "01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
	"06:00 PM", "07:00 PM", "08:00 PM", "09:00 PM", "10:00 PM", "11:00 PM",
}

func IsSlot(label string) bool {
	return slices.Contains(Slots, label)
}

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Occupies reports whether b holds the given slot. Only upcoming bookings hold a slot.
func (b Booking) Occupies(venueID, date, slot string) bool {
	return b.VenueID == venueID &&
		b.Date == date &&
		b.TimeSlot == slot &&
		b.Status == StatusUpcoming
}

// SlotFree is the single availability predicate shared by every check and every store.
func SlotFree(bookings []Booking, venueID, date, slot string) bool {
	for _, b := range bookings {
		if b.Occupies(venueID, date, slot) {
			return false
		}
	}
	return true
}
