package rental

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mehmetcc/resirent/internal/client"
	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/token"
	"go.uber.org/zap"
)

// Doer is satisfied by *client.Client.
type Doer interface {
	Do(ctx context.Context, req *client.Request, out any) error
}

type RentalService interface {
	ListPublicResidences(ctx context.Context) ([]PublicResidence, error)
	GetPublicResidence(ctx context.Context, residenceID int64) (*ResidenceDetail, error)
	ListOwnerResidences(ctx context.Context) ([]Residence, error)
	GetOwnerResidence(ctx context.Context, residenceID int64) (*Residence, error)
	CreateResidence(ctx context.Context, in ResidenceInput) (*Residence, error)
	CreateResidenceWithin(ctx context.Context, claims *token.Claims, in ResidenceInput) (*Residence, error)
	UpdateResidence(ctx context.Context, residenceID int64, upd ResidenceUpdate) (*Residence, error)
	DeleteResidence(ctx context.Context, residenceID int64) error
	ValidateBooking(req BookingRequest) error
	CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error)
	ListOwnerBookings(ctx context.Context) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID int64, status BookingStatus) (*Booking, error)
	Dashboard(ctx context.Context, claims *token.Claims) (*Dashboard, error)
}

type rentalService struct {
	api       Doer
	validator *validator.Validate
	logger    *zap.Logger
}

func NewRentalService(api Doer, logger *zap.Logger) RentalService {
	return &rentalService{
		api:       api,
		validator: httpx.NewValidator(),
		logger:    logger,
	}
}

const ownerRole = person.RoleOwner

func (s *rentalService) validate(v any) error {
	if err := s.validator.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func (s *rentalService) get(ctx context.Context, path string, out any) error {
	return s.api.Do(ctx, client.NewRequest(http.MethodGet, path), out)
}

func (s *rentalService) send(ctx context.Context, method, path string, in, out any) error {
	req, err := client.NewJSONRequest(method, path, in)
	if err != nil {
		return err
	}
	return s.api.Do(ctx, req, out)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
