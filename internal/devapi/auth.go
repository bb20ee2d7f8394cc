package devapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.writeValidation(w, r, err)
		return
	}

	p, err := s.persons.FindByEmail(ctx, req.Email)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(req.Password))
	}
	if err != nil {
		s.logger.Info("login rejected", zap.Error(err))
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse{
			Detail: "No active account found with the given credentials",
			Code:   httpx.ErrNotAuthenticated,
		})
		return
	}

	res, err := s.tokens.Issue(ctx, p, issueMeta(r))
	if err != nil {
		s.logger.Error("failed to issue tokens", zap.Int64("person_id", p.ID), zap.Error(err))
		writeInternal(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res.Pair)
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req refreshRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.writeValidation(w, r, err)
		return
	}

	res, err := s.tokens.Refresh(ctx, req.Refresh, issueMeta(r))
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, res.Pair)
	case errors.Is(err, token.ErrInvalidRefreshToken),
		errors.Is(err, token.ErrRefreshTokenReused),
		errors.Is(err, token.ErrMissingRefreshToken):
		s.logger.Info("refresh rejected", zap.Error(err))
		httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse{
			Detail: "Token is invalid or expired",
			Code:   httpx.ErrTokenNotValid,
		})
	default:
		s.logger.Error("failed to refresh tokens", zap.Error(err))
		writeInternal(w)
	}
}

func (s *Server) RegisterRenter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req renterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.writeValidation(w, r, err)
		return
	}

	s.register(ctx, w, &person.PersonDTO{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
}

func (s *Server) RegisterOwner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if !s.parseMultipart(w, r) {
		return
	}
	req := ownerRequest{
		Email:     r.FormValue("email"),
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Profile: ownerProfileForm{
			Address:             r.FormValue("profile.address"),
			PhoneNumber:         r.FormValue("profile.phone_number"),
			ResidencesToPublish: 1,
		},
	}
	if raw := r.FormValue("profile.residences_to_publish"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteValidationError(w, httpx.FieldErrors{
				"profile.residences_to_publish": {"A valid integer is required."},
			})
			return
		}
		req.Profile.ResidencesToPublish = n
	}

	fields := httpx.FieldErrors{}
	if err := s.validator.Struct(req); err != nil {
		fields = httpx.ValidationDetails(err)
	}
	front := uploadedNames(r.MultipartForm, "profile.id_front_photo", "id_documents")
	back := uploadedNames(r.MultipartForm, "profile.id_back_photo", "id_documents")
	if len(front) == 0 {
		fields["profile.id_front_photo"] = append(fields["profile.id_front_photo"], "No file was submitted.")
	}
	if len(back) == 0 {
		fields["profile.id_back_photo"] = append(fields["profile.id_back_photo"], "No file was submitted.")
	}
	if len(fields) > 0 {
		s.logger.Debug("owner registration rejected", zap.Int("fields", len(fields)))
		httpx.WriteValidationError(w, fields)
		return
	}

	status := person.AccountPending
	if s.cfg.AutoActivateOwners {
		status = person.AccountActive
	}
	s.register(ctx, w, &person.PersonDTO{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.Profile.PhoneNumber,
		Profile: &person.OwnerProfile{
			Address:             req.Profile.Address,
			PhoneNumber:         req.Profile.PhoneNumber,
			IDFrontPhoto:        front[0],
			IDBackPhoto:         back[0],
			ResidencesToPublish: req.Profile.ResidencesToPublish,
			AccountStatus:       status,
		},
	})
}

// register hashes the password and creates the person behind dto.
func (s *Server) register(ctx context.Context, w http.ResponseWriter, dto *person.PersonDTO) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		writeInternal(w)
		return
	}
	dto.Password = string(hash)

	p, err := s.persons.Create(ctx, dto)
	if err != nil {
		switch {
		case errors.Is(err, person.ErrDuplicateEmail):
			httpx.WriteValidationError(w, httpx.FieldErrors{
				"email": {"user with this email already exists."},
			})
		case errors.Is(err, person.ErrDuplicateUsername):
			httpx.WriteValidationError(w, httpx.FieldErrors{
				"username": {"A user with that username already exists."},
			})
		default:
			s.logger.Error("failed to register person", zap.Error(err))
			writeInternal(w)
		}
		return
	}

	s.logger.Info("person registered",
		zap.Int64("id", p.ID),
		zap.String("role", string(p.Role())),
		zap.String("account_status", string(p.AccountStatus())),
	)
	httpx.WriteJSON(w, http.StatusCreated, registeredFrom(p))
}

func issueMeta(r *http.Request) token.IssueMeta {
	meta := httpx.ClientMetaFrom(r)
	return token.IssueMeta{
		UserAgent: r.UserAgent(),
		IP:        strings.TrimSpace(r.RemoteAddr),
		DeviceID:  meta.DeviceID,
	}
}
