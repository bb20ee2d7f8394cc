package devapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/rental"
	"go.uber.org/zap"
)

const residencePhotoField = "uploaded_images"

// textLimits are the editable text fields and their maximum length, zero
// for unbounded.
var textLimits = map[string]int{
	"title":       200,
	"description": 0,
	"address":     255,
	"city":        100,
	"country":     100,
}

// published reports whether a residence shows up in the public listing:
// available, and owned by an active owner.
func (s *Server) published(ctx context.Context, rec *residenceRecord) bool {
	if !rec.IsAvailable {
		return false
	}
	owner, err := s.persons.FindByID(ctx, rec.Owner)
	if err != nil {
		return false
	}
	return owner.Role() == person.RoleOwner && owner.AccountStatus() == person.AccountActive
}

func (s *Server) ListPublicResidences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recs := s.store.listResidences(func(rec *residenceRecord) bool { return s.published(ctx, rec) })

	out := make([]rental.PublicResidence, 0, len(recs))
	for _, rec := range recs {
		item := rental.PublicResidence{
			ID:            rec.ID,
			Title:         rec.Title,
			City:          rec.City,
			Address:       rec.Address,
			PricePerNight: rec.PricePerNight,
		}
		if len(rec.photos) > 0 {
			u := absoluteURL(r, rec.photos[0].path)
			item.MainPhotoURL = &u
		}
		out = append(out, item)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) GetPublicResidence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}
	rec, ok := s.store.residence(id)
	if !ok || !s.published(r.Context(), &rec) {
		writeNotFound(w)
		return
	}
	owner, err := s.persons.FindByID(r.Context(), rec.Owner)
	if err != nil {
		writeNotFound(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, rental.ResidenceDetail{
		ID:            rec.ID,
		Title:         rec.Title,
		Description:   rec.Description,
		Address:       rec.Address,
		City:          rec.City,
		Country:       rec.Country,
		PricePerNight: rec.PricePerNight,
		IsAvailable:   rec.IsAvailable,
		Conditions:    rec.Conditions,
		Owner:         rental.PublicOwner{ID: owner.ID, FirstName: owner.FirstName},
		Photos:        photos(r, rec.photos),
		CreatedAt:     rec.CreatedAt,
	})
}

func (s *Server) ListOwnerResidences(w http.ResponseWriter, r *http.Request) {
	ownerID := claimsFrom(r.Context()).UserID
	recs := s.store.listResidences(func(rec *residenceRecord) bool { return rec.Owner == ownerID })

	out := make([]rental.Residence, 0, len(recs))
	for _, rec := range recs {
		out = append(out, residenceView(r, rec))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) GetOwnerResidence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}
	rec, ok := s.store.residence(id)
	if !ok || rec.Owner != claimsFrom(r.Context()).UserID {
		writeNotFound(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, residenceView(r, rec))
}

func (s *Server) CreateResidence(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if !s.parseMultipart(w, r) {
		return
	}
	form := residenceForm{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Address:       r.FormValue("address"),
		City:          r.FormValue("city"),
		Country:       r.FormValue("country"),
		PricePerNight: r.FormValue("price_per_night"),
	}
	if err := s.validator.Struct(form); err != nil {
		s.writeValidation(w, r, err)
		return
	}
	price, ok := normalizePrice(form.PricePerNight)
	if !ok {
		writePriceError(w)
		return
	}
	available := true
	if raw := r.FormValue("is_available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.WriteValidationError(w, httpx.FieldErrors{"is_available": {"Must be a valid boolean."}})
			return
		}
		available = v
	}

	claims := claimsFrom(ctx)
	// Entitlement is read from the directory, not the token, so a raised
	// limit applies before the next refresh.
	owner, err := s.persons.FindByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Error("owner lookup failed", zap.Int64("person_id", claims.UserID), zap.Error(err))
		writeInternal(w)
		return
	}
	if s.store.countResidences(owner.ID) >= owner.ResidencesToPublish() {
		s.logger.Info("listing limit reached", zap.Int64("person_id", owner.ID))
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse{
			Detail: "You have reached your published residence limit. Please contact the administrator to upgrade your plan.",
			Code:   httpx.ErrPermissionDenied,
		})
		return
	}

	rec := s.store.createResidence(rental.Residence{
		Title:         form.Title,
		Description:   form.Description,
		Address:       form.Address,
		City:          form.City,
		Country:       form.Country,
		PricePerNight: price,
		IsAvailable:   available,
		Conditions:    optional(r, "conditions"),
		Owner:         owner.ID,
		CreatedAt:     s.now(),
	}, uploadedNames(r.MultipartForm, residencePhotoField, "residence_photos"))

	s.logger.Info("residence created", zap.Int64("id", rec.ID), zap.Int64("owner_id", owner.ID))
	httpx.WriteJSON(w, http.StatusCreated, residenceView(r, rec))
}

func (s *Server) UpdateResidence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}
	if !s.parseMultipart(w, r) {
		return
	}

	fields := httpx.FieldErrors{}
	for name, limit := range textLimits {
		v, set := formValue(r, name)
		switch {
		case !set:
		case v == "":
			fields[name] = []string{"This field may not be blank."}
		case limit > 0 && len(v) > limit:
			fields[name] = []string{fmt.Sprintf("Ensure this field has no more than %d characters.", limit)}
		}
	}
	var price string
	if raw, set := formValue(r, "price_per_night"); set {
		if price, ok = normalizePrice(raw); !ok {
			fields["price_per_night"] = []string{"A valid number is required."}
		}
	}
	var available *bool
	if raw, set := formValue(r, "is_available"); set {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fields["is_available"] = []string{"Must be a valid boolean."}
		}
		available = &v
	}
	if len(fields) > 0 {
		httpx.WriteValidationError(w, fields)
		return
	}

	rec, ok := s.store.updateResidence(id, claimsFrom(r.Context()).UserID,
		uploadedNames(r.MultipartForm, residencePhotoField, "residence_photos"), s.now(),
		func(res *rental.Residence) {
			setIf(r, "title", &res.Title)
			setIf(r, "description", &res.Description)
			setIf(r, "address", &res.Address)
			setIf(r, "city", &res.City)
			setIf(r, "country", &res.Country)
			if price != "" {
				res.PricePerNight = price
			}
			if available != nil {
				res.IsAvailable = *available
			}
			if _, set := formValue(r, "conditions"); set {
				res.Conditions = optional(r, "conditions")
			}
		})
	if !ok {
		writeNotFound(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, residenceView(r, rec))
}

func (s *Server) DeleteResidence(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok || !s.store.deleteResidence(id, claimsFrom(r.Context()).UserID) {
		writeNotFound(w)
		return
	}
	s.logger.Info("residence deleted", zap.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func residenceView(r *http.Request, rec residenceRecord) rental.Residence {
	out := rec.Residence
	out.Photos = photos(r, rec.photos)
	return out
}

func photos(r *http.Request, recs []photoRecord) []rental.Photo {
	out := make([]rental.Photo, 0, len(recs))
	for _, p := range recs {
		out = append(out, rental.Photo{ID: p.id, Image: absoluteURL(r, p.path)})
	}
	return out
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// formValue distinguishes an absent field from an empty one.
func formValue(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vs, ok := r.MultipartForm.Value[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func setIf(r *http.Request, name string, dst *string) {
	if v, set := formValue(r, name); set {
		*dst = v
	}
}

// optional maps an absent or empty field to nil.
func optional(r *http.Request, name string) *string {
	v, set := formValue(r, name)
	if !set || v == "" {
		return nil
	}
	return &v
}

// normalizePrice renders a decimal price with two fractional digits, at most
// ten digits in total.
func normalizePrice(raw string) (string, bool) {
	if !httpx.ValidPrice(raw) {
		return "", false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', 2, 64), true
}

func writePriceError(w http.ResponseWriter) {
	httpx.WriteValidationError(w, httpx.FieldErrors{
		"price_per_night": {"Ensure this is a positive decimal with no more than 10 digits and 2 decimal places."},
	})
}
