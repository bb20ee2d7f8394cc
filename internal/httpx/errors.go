package httpx

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorCode string

const (
	ErrParseError       ErrorCode = "parse_error"
	ErrUnsupportedMedia ErrorCode = "unsupported_media_type"
	ErrNotAuthenticated ErrorCode = "not_authenticated"
	ErrTokenNotValid    ErrorCode = "token_not_valid"
	ErrPermissionDenied ErrorCode = "permission_denied"
	ErrNotFound         ErrorCode = "not_found"
	ErrThrottled        ErrorCode = "throttled"
	ErrInternal         ErrorCode = "internal_error"
)

// ErrorResponse is the body of a non-field error, {"detail": ..., "code": ...}.
type ErrorResponse struct {
	Detail string    `json:"detail"`
	Code   ErrorCode `json:"code,omitempty"`
}

// FieldErrors maps a JSON field name to its messages. The key
// "non_field_errors" holds object-level failures.
type FieldErrors map[string][]string

const NonFieldErrors = "non_field_errors"

// ValidationDetails converts validator errors into FieldErrors keyed by the
// lower-cased namespace without the root struct, e.g. "profile.address".
func ValidationDetails(err error) FieldErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{NonFieldErrors: {err.Error()}}
	}
	out := make(FieldErrors, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		msg := "failed on " + e.Tag()
		if e.Param() != "" {
			msg += "=" + e.Param()
		}
		out[field] = append(out[field], msg)
	}
	return out
}
