package devapi

import (
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/rental"
)

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type renterRequest struct {
	Email       string `json:"email"        validate:"required,email,max=254"`
	Username    string `json:"username"     validate:"required,max=150"`
	Password    string `json:"password"     validate:"required,min=8,max=72"`
	FirstName   string `json:"first_name"   validate:"required,max=150"`
	LastName    string `json:"last_name"    validate:"required,max=150"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

type ownerProfileForm struct {
	Address             string `json:"address"               validate:"required,max=255"`
	PhoneNumber         string `json:"phone_number"          validate:"required,max=20"`
	ResidencesToPublish int    `json:"residences_to_publish" validate:"min=1"`
}

// ownerRequest is filled from multipart fields; the profile ones arrive as
// "profile.<name>".
type ownerRequest struct {
	Email     string           `json:"email"      validate:"required,email,max=254"`
	Username  string           `json:"username"   validate:"required,max=150"`
	Password  string           `json:"password"   validate:"required,min=8,max=72"`
	FirstName string           `json:"first_name" validate:"required,max=150"`
	LastName  string           `json:"last_name"  validate:"required,max=150"`
	Profile   ownerProfileForm `json:"profile"`
}

type registeredUser struct {
	ID          int64                `json:"id"`
	Email       string               `json:"email"`
	Username    string               `json:"username"`
	FirstName   string               `json:"first_name"`
	LastName    string               `json:"last_name"`
	PhoneNumber string               `json:"phone_number,omitempty"`
	Profile     *person.OwnerProfile `json:"profile,omitempty"`
}

func registeredFrom(p *person.Person) registeredUser {
	return registeredUser{
		ID:          p.ID,
		Email:       p.Email,
		Username:    p.Username,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
		Profile:     p.Profile,
	}
}

type residenceForm struct {
	Title         string `json:"title"           validate:"required,max=200"`
	Description   string `json:"description"     validate:"required"`
	Address       string `json:"address"         validate:"required,max=255"`
	City          string `json:"city"            validate:"required,max=100"`
	Country       string `json:"country"         validate:"required,max=100"`
	PricePerNight string `json:"price_per_night" validate:"required,price"`
}

type bookingForm struct {
	Residence    int64                `json:"residence"      validate:"required,gt=0"`
	CheckInDate  string               `json:"check_in_date"  validate:"required,datetime=2006-01-02"`
	CheckOutDate string               `json:"check_out_date" validate:"required,datetime=2006-01-02"`
	Status       rental.BookingStatus `json:"status"         validate:"omitempty,oneof=pending confirmed cancelled"`
}

type statusForm struct {
	Status rental.BookingStatus `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}
