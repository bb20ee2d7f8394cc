package auth

import (
	"github.com/mehmetcc/resirent/internal/client"
)

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RenterRegistration struct {
	Email       string `json:"email"        validate:"required,email,max=254"`
	Username    string `json:"username"     validate:"required,max=150"`
	Password    string `json:"password"     validate:"required,min=8"`
	FirstName   string `json:"first_name"   validate:"required,max=150"`
	LastName    string `json:"last_name"    validate:"required,max=150"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

// OwnerRegistration is sent as multipart; the profile fields travel as
// "profile.<name>".
type OwnerRegistration struct {
	Email               string      `json:"email"                 validate:"required,email,max=254"`
	Username            string      `json:"username"              validate:"required,max=150"`
	Password            string      `json:"password"              validate:"required,min=8"`
	FirstName           string      `json:"first_name"            validate:"required,max=150"`
	LastName            string      `json:"last_name"             validate:"required,max=150"`
	Address             string      `json:"address"               validate:"required,max=255"`
	PhoneNumber         string      `json:"phone_number"          validate:"required,max=20"`
	ResidencesToPublish int         `json:"residences_to_publish" validate:"required,min=1"`
	IDFrontPhoto        client.File `json:"-"`
	IDBackPhoto         client.File `json:"-"`
}

// RegisteredUser is what the API echoes back after a registration.
type RegisteredUser struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
