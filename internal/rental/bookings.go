package rental

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	createBookingPath = "bookings/create/"
	ownerBookingsPath = "owner/bookings/"
)

// ValidateBooking checks what can be checked without the API: formats and
// date order. Availability is the API's call.
func (s *rentalService) ValidateBooking(req BookingRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}
	in, _ := time.Parse(DateLayout, req.CheckInDate)
	out, _ := time.Parse(DateLayout, req.CheckOutDate)
	if !out.After(in) {
		return ErrInvalidDates
	}
	return nil
}

func (s *rentalService) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	if err := s.ValidateBooking(req); err != nil {
		return nil, err
	}
	var out Booking
	if err := s.send(ctx, http.MethodPost, createBookingPath, req, &out); err != nil {
		s.logger.Warn("failed to create booking", zap.Int64("residence_id", req.Residence), zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func (s *rentalService) ListOwnerBookings(ctx context.Context) ([]Booking, error) {
	var out []Booking
	if err := s.get(ctx, ownerBookingsPath, &out); err != nil {
		s.logger.Warn("failed to list owner bookings", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *rentalService) UpdateBookingStatus(ctx context.Context, bookingID int64, status BookingStatus) (*Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	var out Booking
	path := ownerBookingsPath + id(bookingID) + "/status/"
	if err := s.send(ctx, http.MethodPatch, path, statusUpdate{Status: status}, &out); err != nil {
		s.logger.Warn("failed to update booking status",
			zap.Int64("booking_id", bookingID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, err
	}
	return &out, nil
}
