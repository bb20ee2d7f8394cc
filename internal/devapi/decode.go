package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/mehmetcc/resirent/internal/httpx"
	"go.uber.org/zap"
)

// decodeJSON reads a single JSON object into v and writes the error
// response itself when it fails.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, httpx.ErrorResponse{
			Detail: fmt.Sprintf("Unsupported media type %q in request.", ct),
			Code:   httpx.ErrUnsupportedMedia,
		})
		return false
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("failed to decode request body", zap.String("path", r.URL.Path), zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse{
			Detail: "JSON parse error",
			Code:   httpx.ErrParseError,
		})
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		s.logger.Warn("trailing data after JSON body", zap.String("path", r.URL.Path))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse{
			Detail: "request body must contain a single JSON object",
			Code:   httpx.ErrParseError,
		})
		return false
	}
	return true
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "multipart/form-data" {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, httpx.ErrorResponse{
			Detail: "Content-Type must be multipart/form-data",
			Code:   httpx.ErrUnsupportedMedia,
		})
		return false
	}
	if err := r.ParseMultipartForm(maxFormBody); err != nil {
		s.logger.Warn("failed to parse multipart body", zap.String("path", r.URL.Path), zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse{
			Detail: "Multipart form parse error",
			Code:   httpx.ErrParseError,
		})
		return false
	}
	return true
}

// uploadedNames maps the files of a form field to media paths under dir.
// Content is discarded; only the names are kept.
func uploadedNames(form *multipart.Form, field, dir string) []string {
	if form == nil {
		return nil
	}
	files := form.File[field]
	out := make([]string, 0, len(files))
	for _, fh := range files {
		if fh.Size == 0 {
			continue
		}
		out = append(out, path.Join("/media", dir, path.Base(fh.Filename)))
	}
	return out
}

func (s *Server) writeValidation(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Debug("validation failed", zap.String("path", r.URL.Path), zap.Error(err))
	httpx.WriteValidationError(w, httpx.ValidationDetails(err))
}

// absoluteURL resolves a media path against the request's host.
func absoluteURL(r *http.Request, p string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + p
}
