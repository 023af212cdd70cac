package reservation

import "errors"

var ErrInvalidDate = errors.New("date must be formatted YYYY-MM-DD")
