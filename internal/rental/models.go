package rental

import (
	"time"

	"github.com/mehmetcc/resirent/internal/client"
)

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

type Photo struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

type PublicOwner struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

// PublicResidence is an item of the public listing.
type PublicResidence struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	City          string  `json:"city"`
	Address       string  `json:"address"`
	PricePerNight string  `json:"price_per_night"`
	MainPhotoURL  *string `json:"main_photo_url"`
}

type ResidenceDetail struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	City          string      `json:"city"`
	Country       string      `json:"country"`
	PricePerNight string      `json:"price_per_night"`
	IsAvailable   bool        `json:"is_available"`
	Conditions    *string     `json:"conditions"`
	Owner         PublicOwner `json:"owner"`
	Photos        []Photo     `json:"photos"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Residence is an owner's own listing.
type Residence struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	PricePerNight string    `json:"price_per_night"`
	IsAvailable   bool      `json:"is_available"`
	Conditions    *string   `json:"conditions"`
	Owner         int64     `json:"owner"`
	Photos        []Photo   `json:"photos"`
	CreatedAt     time.Time `json:"created_at"`
}

type ResidenceInput struct {
	Title         string        `json:"title"           validate:"required,max=200"`
	Description   string        `json:"description"     validate:"required"`
	Address       string        `json:"address"         validate:"required,max=255"`
	City          string        `json:"city"            validate:"required,max=100"`
	Country       string        `json:"country"         validate:"required,max=100"`
	PricePerNight string        `json:"price_per_night" validate:"required,price"`
	IsAvailable   bool          `json:"is_available"`
	Conditions    string        `json:"conditions"`
	Images        []client.File `json:"-"`
}

// ResidenceUpdate is a partial update; nil fields are left untouched.
type ResidenceUpdate struct {
	Title         *string       `json:"title"           validate:"omitempty,min=1,max=200"`
	Description   *string       `json:"description"     validate:"omitempty,min=1"`
	Address       *string       `json:"address"         validate:"omitempty,min=1,max=255"`
	City          *string       `json:"city"            validate:"omitempty,min=1,max=100"`
	Country       *string       `json:"country"         validate:"omitempty,min=1,max=100"`
	PricePerNight *string       `json:"price_per_night" validate:"omitempty,price"`
	IsAvailable   *bool         `json:"is_available"`
	Conditions    *string       `json:"conditions"`
	Images        []client.File `json:"-"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

type Contact struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

type Booking struct {
	ID             int64         `json:"id"`
	Residence      int64         `json:"residence"`
	ResidenceTitle string        `json:"residence_title"`
	Guest          *Contact      `json:"guest"`
	CheckInDate    string        `json:"check_in_date"`
	CheckOutDate   string        `json:"check_out_date"`
	Status         BookingStatus `json:"status"`
	Owner          *Contact      `json:"owner"`
	PricePerNight  string        `json:"price_per_night"`
}

// Nights is the length of the stay, zero if the dates do not parse.
func (b Booking) Nights() int {
	in, err1 := time.Parse(DateLayout, b.CheckInDate)
	out, err2 := time.Parse(DateLayout, b.CheckOutDate)
	if err1 != nil || err2 != nil || !out.After(in) {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}

type BookingRequest struct {
	Residence    int64  `json:"residence"      validate:"required,gt=0"`
	CheckInDate  string `json:"check_in_date"  validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
}

type statusUpdate struct {
	Status BookingStatus `json:"status"`
}

// Dashboard is the owner overview: listings, bookings on them and whether
// another listing fits the entitlement.
type Dashboard struct {
	Residences      []Residence
	Bookings        []Booking
	Limit           int
	CanAddResidence bool
}
