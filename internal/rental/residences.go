package rental

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mehmetcc/resirent/internal/client"
	"go.uber.org/zap"
)

const (
	publicResidencesPath = "residences/public/"
	ownerResidencesPath  = "residences/"
	uploadedImagesField  = "uploaded_images"
)

func (s *rentalService) ListPublicResidences(ctx context.Context) ([]PublicResidence, error) {
	var out []PublicResidence
	if err := s.get(ctx, publicResidencesPath, &out); err != nil {
		s.logger.Warn("failed to list public residences", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *rentalService) GetPublicResidence(ctx context.Context, residenceID int64) (*ResidenceDetail, error) {
	var out ResidenceDetail
	if err := s.get(ctx, publicResidencesPath+id(residenceID)+"/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *rentalService) ListOwnerResidences(ctx context.Context) ([]Residence, error) {
	var out []Residence
	if err := s.get(ctx, ownerResidencesPath, &out); err != nil {
		s.logger.Warn("failed to list owner residences", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *rentalService) GetOwnerResidence(ctx context.Context, residenceID int64) (*Residence, error) {
	var out Residence
	if err := s.get(ctx, ownerResidencesPath+id(residenceID)+"/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *rentalService) CreateResidence(ctx context.Context, in ResidenceInput) (*Residence, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	form := &client.Form{}
	form.Add("title", in.Title)
	form.Add("description", in.Description)
	form.Add("address", in.Address)
	form.Add("city", in.City)
	form.Add("country", in.Country)
	form.Add("price_per_night", in.PricePerNight)
	form.Add("is_available", strconv.FormatBool(in.IsAvailable))
	form.Add("conditions", in.Conditions)
	for _, img := range in.Images {
		form.AddFile(uploadedImagesField, img)
	}

	req, err := client.NewMultipartRequest(http.MethodPost, ownerResidencesPath, form)
	if err != nil {
		return nil, err
	}
	var out Residence
	if err := s.api.Do(ctx, req, &out); err != nil {
		s.logger.Warn("failed to create residence", zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func (s *rentalService) UpdateResidence(ctx context.Context, residenceID int64, upd ResidenceUpdate) (*Residence, error) {
	if err := s.validate(upd); err != nil {
		return nil, err
	}

	form := &client.Form{}
	addIf := func(name string, v *string) {
		if v != nil {
			form.Add(name, *v)
		}
	}
	addIf("title", upd.Title)
	addIf("description", upd.Description)
	addIf("address", upd.Address)
	addIf("city", upd.City)
	addIf("country", upd.Country)
	addIf("price_per_night", upd.PricePerNight)
	addIf("conditions", upd.Conditions)
	if upd.IsAvailable != nil {
		form.Add("is_available", strconv.FormatBool(*upd.IsAvailable))
	}
	for _, img := range upd.Images {
		form.AddFile(uploadedImagesField, img)
	}

	req, err := client.NewMultipartRequest(http.MethodPatch, ownerResidencesPath+id(residenceID)+"/", form)
	if err != nil {
		return nil, err
	}
	var out Residence
	if err := s.api.Do(ctx, req, &out); err != nil {
		s.logger.Warn("failed to update residence", zap.Int64("residence_id", residenceID), zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func (s *rentalService) DeleteResidence(ctx context.Context, residenceID int64) error {
	if err := s.api.Do(ctx, client.NewRequest(http.MethodDelete, ownerResidencesPath+id(residenceID)+"/"), nil); err != nil {
		s.logger.Warn("failed to delete residence", zap.Int64("residence_id", residenceID), zap.Error(err))
		return err
	}
	return nil
}
