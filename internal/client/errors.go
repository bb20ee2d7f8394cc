package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrNoRefreshToken = errors.New("client: no refresh token in session")
	ErrBadTokenPair   = errors.New("client: refresh response carried no access token")
	ErrDecode         = errors.New("client: cannot decode response")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// Message returns the text to show a user for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func newAPIError(req *Request, status int, body []byte) *APIError {
	e := &APIError{
		Method: req.Method,
		Path:   req.Path,
		Status: status,
		Body:   body,
	}
	e.Code, e.Message = parseErrorBody(body)
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// parseErrorBody understands {"detail": "...", "code": "..."} and field maps
// such as {"email": ["already exists"]}.
func parseErrorBody(body []byte) (code, message string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return "", ""
	}
	if raw, ok := fields["code"]; ok {
		_ = json.Unmarshal(raw, &code)
	}
	if raw, ok := fields["detail"]; ok {
		var detail string
		if json.Unmarshal(raw, &detail) == nil && detail != "" {
			return code, detail
		}
	}
	if raw, ok := fields["non_field_errors"]; ok {
		if msg := firstMessage(raw); msg != "" {
			return code, msg
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "code" && k != "detail" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := firstMessage(fields[k]); msg != "" {
			return code, k + ": " + msg
		}
	}
	return code, ""
}

func firstMessage(raw json.RawMessage) string {
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	var one string
	if json.Unmarshal(raw, &one) == nil {
		return strings.TrimSpace(one)
	}
	return ""
}
