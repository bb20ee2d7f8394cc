package rental

import (
	"context"

	"github.com/mehmetcc/resirent/internal/auth"
	"github.com/mehmetcc/resirent/internal/token"
	"golang.org/x/sync/errgroup"
)

// Dashboard loads the owner's listings and bookings together; either
// failure fails the whole load.
func (s *rentalService) Dashboard(ctx context.Context, claims *token.Claims) (*Dashboard, error) {
	if !auth.Authorize(claims, ownerRole).Allowed() {
		return nil, ErrNotOwner
	}

	var (
		residences []Residence
		bookings   []Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		residences, err = s.ListOwnerResidences(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = s.ListOwnerBookings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		Residences:      residences,
		Bookings:        bookings,
		Limit:           claims.ResidencesToPublish,
		CanAddResidence: auth.CanAddResidence(claims, len(residences)),
	}, nil
}

// CreateResidenceWithin creates a listing only if the entitlement in claims
// leaves room for it.
func (s *rentalService) CreateResidenceWithin(ctx context.Context, claims *token.Claims, in ResidenceInput) (*Residence, error) {
	if !auth.Authorize(claims, ownerRole).Allowed() {
		return nil, ErrNotOwner
	}
	current, err := s.ListOwnerResidences(ctx)
	if err != nil {
		return nil, err
	}
	if !auth.CanAddResidence(claims, len(current)) {
		return nil, ErrListingLimit
	}
	return s.CreateResidence(ctx, in)
}
