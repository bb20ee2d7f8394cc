package rental

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidDates  = errors.New("check-out date must be after check-in date")
	ErrInvalidStatus = errors.New("invalid booking status")
	ErrNotOwner      = errors.New("owner account required")
	ErrListingLimit  = errors.New("listing limit reached")
)
