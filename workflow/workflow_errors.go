package workflow

import "errors"

var ErrInvalidStage = errors.New("operation not allowed in the current stage")

var ErrInvalidSelection = errors.New("date must be within the booking window and slot must be a bookable hour")

var ErrInvalidPayment = errors.New("card holder and card number are required")

var ErrNotFound = errors.New("reservation not found")
