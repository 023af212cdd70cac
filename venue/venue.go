package venue

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Sports lists the categories a venue can offer. Order matches the sport picker.
var Sports = []string{
	"Football", "Cricket", "Tennis", "Badminton", "Basketball", "Table Tennis", "Hockey",
	"Kabbadi", "Boxing", "Volleyball", "Ko-ko", "Throw Ball", "E-sports", "Athletics",
}

var DefaultAmenities = []string{"Professional Lights", "Locker Rooms", "Refreshments"}

const (
	DefaultRating = 5.0

	// AllSports disables the sport filter.
	AllSports = "All"

	// UnavailableName is shown for bookings whose venue no longer exists.
	UnavailableName = "Venue Unavailable"
)

type Venue struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name" validate:"required"`
	Description  string    `json:"description" bson:"description"`
	Location     string    `json:"location" bson:"location" validate:"required"`
	Rating       float64   `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	PricePerHour float64   `json:"pricePerHour" bson:"pricePerHour" validate:"gt=0"`
	Image        string    `json:"image" bson:"image"`
	Sports       []string  `json:"sports" bson:"sports" validate:"required,min=1,dive,sport"`
	Amenities    []string  `json:"amenities" bson:"amenities"`
	OwnerID      string    `json:"ownerId" bson:"ownerId" validate:"required"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Location     *string  `json:"location,omitempty"`
	PricePerHour *float64 `json:"pricePerHour,omitempty"`
	Image        *string  `json:"image,omitempty"`
	Sports       []string `json:"sports,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
}

func (p Patch) Apply(v Venue) Venue {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.Location != nil {
		v.Location = *p.Location
	}
	if p.PricePerHour != nil {
		v.PricePerHour = *p.PricePerHour
	}
	if p.Image != nil {
		v.Image = *p.Image
	}
	if p.Sports != nil {
		v.Sports = slices.Clone(p.Sports)
	}
	if p.Amenities != nil {
		v.Amenities = slices.Clone(p.Amenities)
	}
	return v
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Location == nil &&
		p.PricePerHour == nil && p.Image == nil && p.Sports == nil && p.Amenities == nil
}

type Filter struct {
	Query   string `form:"query"`
	Sport   string `form:"sport"`
	OwnerID string `form:"-"`
}

// Matches applies a case-insensitive substring match on name or location,
// sport membership and owner scoping.
func (f Filter) Matches(v Venue) bool {
	if f.OwnerID != "" && v.OwnerID != f.OwnerID {
		return false
	}

	if f.Sport != "" && f.Sport != AllSports && !slices.Contains(v.Sports, f.Sport) {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(v.Name), q) ||
		strings.Contains(strings.ToLower(v.Location), q)
}

func (f Filter) Apply(venues []Venue) []Venue {
	out := []Venue{}
	for _, v := range venues {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// WithDefaults fills the fields a newly listed venue starts with.
func (v Venue) WithDefaults() Venue {
	if v.Rating == 0 {
		v.Rating = DefaultRating
	}
	if len(v.Amenities) == 0 {
		v.Amenities = slices.Clone(DefaultAmenities)
	}
	return v
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("sport", func(fl validator.FieldLevel) bool {
		return slices.Contains(Sports, fl.Field().String())
	})
	return v
}

func Validate(v Venue) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVenue, err)
	}
	return nil
}

// ValidatePatch checks a partial update by validating the venue it would produce.
func ValidatePatch(current Venue, p Patch) error {
	return Validate(p.Apply(current))
}
