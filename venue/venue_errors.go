package venue

import "errors"

var ErrVenueNotFound = errors.New("venue not found")

var ErrInvalidVenue = errors.New("invalid venue")

var ErrNotOwner = errors.New("venue belongs to another owner")
