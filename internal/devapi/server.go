// Package devapi serves an in-process version of the rental API for local
// development and end-to-end tests. State lives in memory.
package devapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/mehmetcc/resirent/internal/config"
	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/token"
	"go.uber.org/zap"
	"moul.io/chizap"
)

const (
	BasePath = "/api"

	handlerTimeout = 3 * time.Second
	maxJSONBody    = 1 << 20
	maxFormBody    = 32 << 20
)

type Server struct {
	logger    *zap.Logger
	cfg       *config.DevServerConfig
	persons   person.PersonRepo
	tokens    token.TokenService
	store     *store
	validator *validator.Validate
	now       func() time.Time
}

func NewServer(logger *zap.Logger, cfg *config.DevServerConfig, persons person.PersonRepo, tokens token.TokenService) *Server {
	return &Server{
		logger:    logger,
		cfg:       cfg,
		persons:   persons,
		tokens:    tokens,
		store:     newStore(),
		validator: httpx.NewValidator(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handler mounts every route under BasePath.
func (s *Server) Handler() http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RealIP,
		chizap.New(s.logger, &chizap.Opts{
			WithReferer:   false,
			WithUserAgent: true,
		}),
		middleware.Recoverer,
	)
	if len(s.cfg.AllowedOrigins) > 0 {
		root.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.HeaderDeviceID, httpx.HeaderPlatform, httpx.HeaderAppVersion},
			MaxAge:         300,
		}))
	}
	if s.cfg.RateLimit > 0 {
		root.Use(httprate.Limit(s.cfg.RateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				httpx.WriteError(w, http.StatusTooManyRequests, httpx.ErrorResponse{
					Detail: "Request was throttled.",
					Code:   httpx.ErrThrottled,
				})
			}),
		))
	}
	root.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w)
	})
	root.Mount(BasePath, s.Routes())
	return root
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.authenticate)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w)
	})

	r.Post("/login/", s.Login)
	r.Post("/login/refresh/", s.Refresh)
	r.Post("/register/owner/", s.RegisterOwner)
	r.Post("/register/renter/", s.RegisterRenter)

	r.Get("/residences/public/", s.ListPublicResidences)
	r.Get("/residences/public/{id}/", s.GetPublicResidence)

	r.Group(func(r chi.Router) {
		r.Use(s.requireActiveOwner)
		r.Get("/residences/", s.ListOwnerResidences)
		r.Post("/residences/", s.CreateResidence)
		r.Get("/residences/{id}/", s.GetOwnerResidence)
		r.Patch("/residences/{id}/", s.UpdateResidence)
		r.Delete("/residences/{id}/", s.DeleteResidence)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/bookings/create/", s.CreateBooking)
		r.Get("/owner/bookings/", s.ListOwnerBookings)
		r.Patch("/owner/bookings/{id}/status/", s.UpdateBookingStatus)
	})
	return r
}

func writeNotFound(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse{
		Detail: "Not found.",
		Code:   httpx.ErrNotFound,
	})
}

func writeInternal(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse{
		Detail: "internal server error",
		Code:   httpx.ErrInternal,
	})
}
