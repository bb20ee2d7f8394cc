package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError_Unauthorized(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusUnauthorized, ErrorResponse{Detail: "nope", Code: ErrTokenNotValid})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"detail":"nope","code":"token_not_valid"}`, rec.Body.String())
}

func TestValidationDetails(t *testing.T) {
	t.Parallel()
	type profile struct {
		Address string `json:"address" validate:"required"`
	}
	type req struct {
		Email   string  `json:"email" validate:"required,email"`
		Profile profile `json:"profile"`
	}
	v := NewValidator()

	fields := ValidationDetails(v.Struct(req{Email: "x"}))
	require.Equal(t, []string{"failed on email"}, fields["email"])
	require.Equal(t, []string{"failed on required"}, fields["profile.address"])

	fields = ValidationDetails(errors.New("boom"))
	require.Equal(t, []string{"boom"}, fields[NonFieldErrors])

	rec := httptest.NewRecorder()
	WriteValidationError(rec, fields)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []string{"boom"}, body[NonFieldErrors])
}

func TestClientMeta_RoundTrip(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ClientMeta{DeviceID: "dev-1", Platform: PlatformCLI}.Apply(req.Header)

	got := ClientMetaFrom(req)
	require.Equal(t, "dev-1", got.DeviceID)
	require.Equal(t, PlatformCLI, got.Platform)
	require.Empty(t, req.Header.Get(HeaderAppVersion))
}

func TestValidPrice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want bool
	}{
		{"120.00", true},
		{"95.5", true},
		{"7", true},
		{"12345678.99", true},
		{"0.01", true},
		{"0", false},
		{"0.00", false},
		{"-10.00", false},
		{"+10", false},
		{"10.001", false},
		{"123456789", false},
		{"1e3", false},
		{"", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ValidPrice(tt.in), tt.in)
	}
}
