package devapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mehmetcc/resirent/internal/auth"
	"github.com/mehmetcc/resirent/internal/client"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/rental"
	"github.com/mehmetcc/resirent/internal/session"
	"github.com/mehmetcc/resirent/internal/token"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type app struct {
	store   *session.Store
	storage *session.MemoryStorage
	api     *client.Client
	auth    auth.AuthService
	rental  rental.RentalService
}

func newApp(t *testing.T, h *harness) *app {
	t.Helper()
	logger := zap.NewNop()
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage, logger)
	require.NoError(t, store.Open(context.Background()))

	api, err := client.New(client.Config{
		BaseURL: h.http.URL + BasePath + "/",
		Timeout: 5 * time.Second,
	}, store, logger, client.WithHTTPClient(h.http.Client()))
	require.NoError(t, err)

	return &app{
		store:   store,
		storage: storage,
		api:     api,
		auth:    auth.NewAuthenticationService(api, store, logger),
		rental:  rental.NewRentalService(api, logger),
	}
}

func photo(name string) client.File {
	return client.File{Name: name, ContentType: "image/jpeg", Data: []byte("jpeg")}
}

func listing(title string) rental.ResidenceInput {
	return rental.ResidenceInput{
		Title:         title,
		Description:   "Sea view",
		Address:       "Kordon 1",
		City:          "Izmir",
		Country:       "TR",
		PricePerNight: "95.5",
		IsAvailable:   true,
		Images:        []client.File{photo("view.jpg")},
	}
}

func TestEndToEnd_OwnerAndRenter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, true)
	a := newApp(t, h)

	_, err := a.auth.RegisterOwner(ctx, auth.OwnerRegistration{
		Email:               "owner@example.com",
		Username:            "owner",
		Password:            "password123",
		FirstName:           "Omer",
		LastName:            "Owner",
		Address:             "Kordon 1",
		PhoneNumber:         "555",
		ResidencesToPublish: 1,
		IDFrontPhoto:        photo("front.jpg"),
		IDBackPhoto:         photo("back.jpg"),
	})
	require.NoError(t, err)
	_, err = a.auth.RegisterRenter(ctx, auth.RenterRegistration{
		Email:       "renter@example.com",
		Username:    "renter",
		Password:    "password123",
		FirstName:   "Rita",
		LastName:    "Renter",
		PhoneNumber: "556",
	})
	require.NoError(t, err)

	claims, err := a.auth.Login(ctx, "owner@example.com", "password123")
	require.NoError(t, err)
	require.True(t, auth.IsActiveOwner(claims))

	res, err := a.rental.CreateResidenceWithin(ctx, claims, listing("Kordon flat"))
	require.NoError(t, err)
	require.Equal(t, "95.50", res.PricePerNight)

	_, err = a.rental.CreateResidenceWithin(ctx, claims, listing("Second flat"))
	require.ErrorIs(t, err, rental.ErrListingLimit)
	_, err = a.rental.CreateResidence(ctx, listing("Second flat"))
	require.True(t, client.IsStatus(err, http.StatusForbidden))

	public, err := a.rental.ListPublicResidences(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.NotNil(t, public[0].MainPhotoURL)
	require.True(t, strings.HasPrefix(*public[0].MainPhotoURL, h.http.URL))

	detail, err := a.rental.GetPublicResidence(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, "Omer", detail.Owner.FirstName)

	require.NoError(t, a.auth.Logout(ctx))
	require.Nil(t, a.auth.Identity())

	_, err = a.auth.Login(ctx, "renter@example.com", "wrong-password")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	claims, err = a.auth.Login(ctx, "renter@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, auth.DenyRole, auth.Authorize(claims, person.RoleOwner))

	in := time.Now().UTC().AddDate(0, 0, 20).Format(rental.DateLayout)
	out := time.Now().UTC().AddDate(0, 0, 23).Format(rental.DateLayout)
	booking, err := a.rental.CreateBooking(ctx, rental.BookingRequest{Residence: res.ID, CheckInDate: in, CheckOutDate: out})
	require.NoError(t, err)
	require.Equal(t, rental.BookingPending, booking.Status)
	require.Equal(t, 3, booking.Nights())

	_, err = a.rental.Dashboard(ctx, a.auth.Identity())
	require.ErrorIs(t, err, rental.ErrNotOwner)

	require.NoError(t, a.auth.Logout(ctx))
	claims, err = a.auth.Login(ctx, "owner@example.com", "password123")
	require.NoError(t, err)

	dash, err := a.rental.Dashboard(ctx, claims)
	require.NoError(t, err)
	require.Len(t, dash.Residences, 1)
	require.Len(t, dash.Bookings, 1)
	require.False(t, dash.CanAddResidence)
	require.Equal(t, "Rita", dash.Bookings[0].Guest.FirstName)

	confirmed, err := a.rental.UpdateBookingStatus(ctx, booking.ID, rental.BookingConfirmed)
	require.NoError(t, err)
	require.Equal(t, rental.BookingConfirmed, confirmed.Status)

	require.NoError(t, a.auth.Logout(ctx))
	_, err = a.auth.Login(ctx, "renter@example.com", "password123")
	require.NoError(t, err)

	_, err = a.rental.CreateBooking(ctx, rental.BookingRequest{Residence: res.ID, CheckInDate: in, CheckOutDate: out})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "This residence is already booked for the selected dates. Please choose different dates.", client.Message(err))
}

func TestEndToEnd_SilentRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)
	owner := h.seed(t, "owner@example.com", activeOwner(3))
	a := newApp(t, h)

	_, err := a.auth.Login(ctx, "owner@example.com", "password123")
	require.NoError(t, err)
	issued := a.store.Get().Pair

	// the access token expires while the refresh token stays valid
	require.NoError(t, a.store.Set(ctx, token.Pair{Access: h.expiredAccess(t, owner), Refresh: issued.Refresh}))

	residences, err := a.rental.ListOwnerResidences(ctx)
	require.NoError(t, err)
	require.Empty(t, residences)

	current := a.store.Get()
	require.True(t, current.Authenticated())
	require.NotEqual(t, issued.Refresh, current.RefreshToken())
	require.Equal(t, owner.ID, current.Claims.UserID)

	persisted, err := a.storage.Load(ctx, session.DefaultKey)
	require.NoError(t, err)
	require.Contains(t, string(persisted), current.RefreshToken())
}

func TestEndToEnd_RefreshRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, false)
	owner := h.seed(t, "owner@example.com", activeOwner(3))
	a := newApp(t, h)

	_, err := a.auth.Login(ctx, "owner@example.com", "password123")
	require.NoError(t, err)
	stale := a.store.Get().RefreshToken()

	_, err = a.rental.ListOwnerResidences(ctx)
	require.NoError(t, err)

	// force one rotation, then replay the token it replaced
	require.NoError(t, a.store.Set(ctx, token.Pair{Access: h.expiredAccess(t, owner), Refresh: stale}))
	_, err = a.rental.ListOwnerResidences(ctx)
	require.NoError(t, err)
	require.NoError(t, a.store.Set(ctx, token.Pair{Access: h.expiredAccess(t, owner), Refresh: stale}))

	_, err = a.rental.ListOwnerResidences(ctx)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "token_not_valid", apiErr.Code)
	require.Equal(t, "residences/", apiErr.Path)

	require.False(t, a.store.Get().Authenticated())
	_, err = a.storage.Load(ctx, session.DefaultKey)
	require.ErrorIs(t, err, session.ErrSlotEmpty)

	// later calls go out without a bearer
	_, err = a.rental.ListOwnerResidences(ctx)
	require.True(t, client.IsStatus(err, http.StatusUnauthorized))
	require.Contains(t, client.Message(err), "Authentication credentials were not provided.")
}
