package devapi

import (
	"context"
	"net/http"
	"time"

	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/rental"
	"go.uber.org/zap"
)

func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var form bookingForm
	if !s.decodeJSON(w, r, &form) {
		return
	}
	if err := s.validator.Struct(form); err != nil {
		s.writeValidation(w, r, err)
		return
	}
	checkIn, _ := time.Parse(rental.DateLayout, form.CheckInDate)
	checkOut, _ := time.Parse(rental.DateLayout, form.CheckOutDate)

	if _, ok := s.store.residence(form.Residence); !ok {
		httpx.WriteValidationError(w, httpx.FieldErrors{
			"residence": {"Invalid pk - object does not exist."},
		})
		return
	}
	if !checkIn.Before(checkOut) {
		writeNonField(w, "Check-out date must be after check-in date.")
		return
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		writeNonField(w, "Check-in date cannot be in the past.")
		return
	}

	// new bookings always start pending; the owner confirms them
	b, ok := s.store.createBooking(bookingRecord{
		residenceID: form.Residence,
		guestID:     claimsFrom(ctx).UserID,
		checkIn:     checkIn,
		checkOut:    checkOut,
		status:      rental.BookingPending,
		createdAt:   now,
	})
	if !ok {
		s.logger.Info("booking conflicts with a confirmed stay", zap.Int64("residence_id", form.Residence))
		writeNonField(w, "This residence is already booked for the selected dates. Please choose different dates.")
		return
	}

	view, err := s.bookingView(ctx, b)
	if err != nil {
		s.logger.Error("failed to render booking", zap.Int64("id", b.id), zap.Error(err))
		writeInternal(w)
		return
	}
	s.logger.Info("booking created", zap.Int64("id", b.id), zap.Int64("residence_id", b.residenceID))
	httpx.WriteJSON(w, http.StatusCreated, view)
}

func (s *Server) ListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recs := s.store.ownerBookings(claimsFrom(ctx).UserID)

	out := make([]rental.Booking, 0, len(recs))
	for _, b := range recs {
		view, err := s.bookingView(ctx, b)
		if err != nil {
			s.logger.Warn("skipping booking", zap.Int64("id", b.id), zap.Error(err))
			continue
		}
		out = append(out, view)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}
	var form statusForm
	if !s.decodeJSON(w, r, &form) {
		return
	}
	if err := s.validator.Struct(form); err != nil {
		s.writeValidation(w, r, err)
		return
	}

	b, ok := s.store.setBookingStatus(id, claimsFrom(r.Context()).UserID, form.Status)
	if !ok {
		writeNotFound(w)
		return
	}
	view, err := s.bookingView(r.Context(), b)
	if err != nil {
		s.logger.Error("failed to render booking", zap.Int64("id", b.id), zap.Error(err))
		writeInternal(w)
		return
	}
	s.logger.Info("booking status updated", zap.Int64("id", b.id), zap.String("status", string(b.status)))
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) bookingView(ctx context.Context, b bookingRecord) (rental.Booking, error) {
	res, ok := s.store.residence(b.residenceID)
	if !ok {
		return rental.Booking{}, person.ErrNotFound
	}
	guest, err := s.persons.FindByID(ctx, b.guestID)
	if err != nil {
		return rental.Booking{}, err
	}
	owner, err := s.persons.FindByID(ctx, res.Owner)
	if err != nil {
		return rental.Booking{}, err
	}
	return rental.Booking{
		ID:             b.id,
		Residence:      b.residenceID,
		ResidenceTitle: res.Title,
		Guest:          contact(guest),
		CheckInDate:    b.checkIn.Format(rental.DateLayout),
		CheckOutDate:   b.checkOut.Format(rental.DateLayout),
		Status:         b.status,
		Owner:          contact(owner),
		PricePerNight:  res.PricePerNight,
	}, nil
}

func contact(p *person.Person) *rental.Contact {
	c := &rental.Contact{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
	if p.PhoneNumber != "" {
		phone := p.PhoneNumber
		c.PhoneNumber = &phone
	}
	return c
}

func writeNonField(w http.ResponseWriter, msg string) {
	httpx.WriteValidationError(w, httpx.FieldErrors{httpx.NonFieldErrors: {msg}})
}
