package rental

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"

	"github.com/mehmetcc/resirent/internal/client"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/token"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type route struct {
	method string
	path   string
}

// stubAPI answers by method and path. Safe for the concurrent dashboard.
type stubAPI struct {
	mu     sync.Mutex
	routes map[route]func(req *client.Request, out any) error
	calls  []*client.Request
}

func newStubAPI() *stubAPI {
	return &stubAPI{routes: map[route]func(*client.Request, any) error{}}
}

func (s *stubAPI) on(method, path string, fn func(*client.Request, any) error) {
	s.routes[route{method, path}] = fn
}

func (s *stubAPI) Do(_ context.Context, req *client.Request, out any) error {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	fn, ok := s.routes[route{req.Method, req.Path}]
	s.mu.Unlock()
	if !ok {
		return &client.APIError{Method: req.Method, Path: req.Path, Status: http.StatusNotFound, Message: "Not found."}
	}
	return fn(req, out)
}

func (s *stubAPI) lastCall() *client.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func (s *stubAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func respond(v any) func(*client.Request, any) error {
	return func(_ *client.Request, out any) error {
		if out == nil {
			return nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	}
}

func fail(status int) func(*client.Request, any) error {
	return func(req *client.Request, _ any) error {
		return &client.APIError{Method: req.Method, Path: req.Path, Status: status, Message: http.StatusText(status)}
	}
}

func multipartForm(t *testing.T, req *client.Request) *multipart.Form {
	t.Helper()
	_, params, err := mime.ParseMediaType(req.ContentType)
	require.NoError(t, err)
	form, err := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)
	return form
}

func owner(limit int) *token.Claims {
	return &token.Claims{
		UserID:              7,
		Role:                person.RoleOwner,
		AccountStatus:       person.AccountActive,
		ResidencesToPublish: limit,
	}
}

func TestListPublicResidences(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	photo := "http://127.0.0.1:8000/media/a.jpg"
	api.on(http.MethodGet, "residences/public/", respond([]PublicResidence{
		{ID: 1, Title: "Loft", City: "Izmir", PricePerNight: "120.00", MainPhotoURL: &photo},
		{ID: 2, Title: "Cabin", City: "Bolu", PricePerNight: "80.50"},
	}))
	svc := NewRentalService(api, zap.NewNop())

	got, err := svc.ListPublicResidences(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, photo, *got[0].MainPhotoURL)
	require.Nil(t, got[1].MainPhotoURL)
}

func TestGetPublicResidence_PassesErrorThrough(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	svc := NewRentalService(api, zap.NewNop())

	_, err := svc.GetPublicResidence(context.Background(), 42)
	require.True(t, client.IsStatus(err, http.StatusNotFound))
	require.Equal(t, "residences/public/42/", api.lastCall().Path)
}

func TestCreateResidence_Multipart(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	api.on(http.MethodPost, "residences/", respond(Residence{ID: 5, Title: "Loft"}))
	svc := NewRentalService(api, zap.NewNop())

	res, err := svc.CreateResidence(context.Background(), ResidenceInput{
		Title:         "Loft",
		Description:   "Sunny",
		Address:       "Main 1",
		City:          "Izmir",
		Country:       "TR",
		PricePerNight: "120.00",
		IsAvailable:   true,
		Images: []client.File{
			{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte("aaa")},
			{Name: "b.jpg", ContentType: "image/jpeg", Data: []byte("bbb")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), res.ID)

	form := multipartForm(t, api.lastCall())
	require.Equal(t, []string{"Loft"}, form.Value["title"])
	require.Equal(t, []string{"120.00"}, form.Value["price_per_night"])
	require.Equal(t, []string{"true"}, form.Value["is_available"])
	require.Len(t, form.File["uploaded_images"], 2)

	f, err := form.File["uploaded_images"][1].Open()
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "bbb", string(data))
}

func TestCreateResidence_Invalid(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	svc := NewRentalService(api, zap.NewNop())

	_, err := svc.CreateResidence(context.Background(), ResidenceInput{Title: "Loft", PricePerNight: "cheap"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Zero(t, api.callCount())
}

func TestResidencePrice_MustBePositive(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	svc := NewRentalService(api, zap.NewNop())

	in := ResidenceInput{
		Title: "Loft", Description: "d", Address: "a", City: "c", Country: "x",
		PricePerNight: "-10.00",
	}
	_, err := svc.CreateResidence(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidInput)

	zero := "0.00"
	_, err = svc.UpdateResidence(context.Background(), 5, ResidenceUpdate{PricePerNight: &zero})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Zero(t, api.callCount())
}

func TestUpdateResidence_OnlySetFields(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	api.on(http.MethodPatch, "residences/5/", respond(Residence{ID: 5, Title: "New"}))
	svc := NewRentalService(api, zap.NewNop())

	title := "New"
	off := false
	_, err := svc.UpdateResidence(context.Background(), 5, ResidenceUpdate{Title: &title, IsAvailable: &off})
	require.NoError(t, err)

	form := multipartForm(t, api.lastCall())
	require.Equal(t, []string{"New"}, form.Value["title"])
	require.Equal(t, []string{"false"}, form.Value["is_available"])
	require.NotContains(t, form.Value, "description")
	require.NotContains(t, form.Value, "price_per_night")
	require.Empty(t, form.File)
}

func TestDeleteResidence(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	api.on(http.MethodDelete, "residences/9/", respond(nil))
	svc := NewRentalService(api, zap.NewNop())

	require.NoError(t, svc.DeleteResidence(context.Background(), 9))
	require.Equal(t, http.MethodDelete, api.lastCall().Method)
}

func TestValidateBooking(t *testing.T) {
	t.Parallel()
	svc := NewRentalService(newStubAPI(), zap.NewNop())

	tests := []struct {
		name string
		req  BookingRequest
		want error
	}{
		{"ok", BookingRequest{Residence: 1, CheckInDate: "2026-11-01", CheckOutDate: "2026-11-04"}, nil},
		{"same day", BookingRequest{Residence: 1, CheckInDate: "2026-11-01", CheckOutDate: "2026-11-01"}, ErrInvalidDates},
		{"reversed", BookingRequest{Residence: 1, CheckInDate: "2026-11-04", CheckOutDate: "2026-11-01"}, ErrInvalidDates},
		{"bad format", BookingRequest{Residence: 1, CheckInDate: "01/11/2026", CheckOutDate: "2026-11-04"}, ErrInvalidInput},
		{"no residence", BookingRequest{CheckInDate: "2026-11-01", CheckOutDate: "2026-11-04"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateBooking(tt.req)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateBooking(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	api.on(http.MethodPost, "bookings/create/", respond(Booking{ID: 11, Residence: 1, Status: BookingPending}))
	svc := NewRentalService(api, zap.NewNop())

	b, err := svc.CreateBooking(context.Background(), BookingRequest{Residence: 1, CheckInDate: "2026-11-01", CheckOutDate: "2026-11-04"})
	require.NoError(t, err)
	require.Equal(t, BookingPending, b.Status)
	require.JSONEq(t, `{"residence":1,"check_in_date":"2026-11-01","check_out_date":"2026-11-04"}`, string(api.lastCall().Body))
}

func TestUpdateBookingStatus(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	api.on(http.MethodPatch, "owner/bookings/11/status/", respond(Booking{ID: 11, Status: BookingConfirmed}))
	svc := NewRentalService(api, zap.NewNop())

	b, err := svc.UpdateBookingStatus(context.Background(), 11, BookingConfirmed)
	require.NoError(t, err)
	require.Equal(t, BookingConfirmed, b.Status)
	require.JSONEq(t, `{"status":"confirmed"}`, string(api.lastCall().Body))

	_, err = svc.UpdateBookingStatus(context.Background(), 11, "approved")
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.Equal(t, 1, api.callCount())
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	api.on(http.MethodGet, "residences/", respond([]Residence{{ID: 1}, {ID: 2}}))
	api.on(http.MethodGet, "owner/bookings/", respond([]Booking{{ID: 3}}))
	svc := NewRentalService(api, zap.NewNop())

	d, err := svc.Dashboard(context.Background(), owner(3))
	require.NoError(t, err)
	require.Len(t, d.Residences, 2)
	require.Len(t, d.Bookings, 1)
	require.Equal(t, 3, d.Limit)
	require.True(t, d.CanAddResidence)

	d, err = svc.Dashboard(context.Background(), owner(2))
	require.NoError(t, err)
	require.False(t, d.CanAddResidence)
}

func TestDashboard_FailsAsUnit(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	api.on(http.MethodGet, "residences/", respond([]Residence{{ID: 1}}))
	api.on(http.MethodGet, "owner/bookings/", fail(http.StatusInternalServerError))
	svc := NewRentalService(api, zap.NewNop())

	d, err := svc.Dashboard(context.Background(), owner(3))
	require.Nil(t, d)
	require.True(t, client.IsStatus(err, http.StatusInternalServerError))
}

func TestDashboard_RequiresOwner(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	svc := NewRentalService(api, zap.NewNop())

	_, err := svc.Dashboard(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Dashboard(context.Background(), &token.Claims{Role: person.RoleRenter})
	require.ErrorIs(t, err, ErrNotOwner)
	require.Zero(t, api.callCount())
}

func TestCreateResidenceWithin_Limit(t *testing.T) {
	t.Parallel()
	api := newStubAPI()
	api.on(http.MethodGet, "residences/", respond([]Residence{{ID: 1}}))
	api.on(http.MethodPost, "residences/", respond(Residence{ID: 2}))
	svc := NewRentalService(api, zap.NewNop())
	in := ResidenceInput{Title: "T", Description: "D", Address: "A", City: "C", Country: "X", PricePerNight: "10.00"}

	_, err := svc.CreateResidenceWithin(context.Background(), owner(1), in)
	require.True(t, errors.Is(err, ErrListingLimit))

	res, err := svc.CreateResidenceWithin(context.Background(), owner(2), in)
	require.NoError(t, err)
	require.Equal(t, int64(2), res.ID)
}

func TestBookingNights(t *testing.T) {
	t.Parallel()
	require.Equal(t, 3, Booking{CheckInDate: "2026-11-01", CheckOutDate: "2026-11-04"}.Nights())
	require.Zero(t, Booking{CheckInDate: "bad", CheckOutDate: "2026-11-04"}.Nights())
}
