package person

import (
	"time"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleRenter Role = "renter"
)

type AccountStatus string

const (
	AccountPending   AccountStatus = "pending"
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

// OwnerProfile is only present on owners. Renters are active by default.
type OwnerProfile struct {
	Address             string        `json:"address"`
	PhoneNumber         string        `json:"phone_number"`
	IDFrontPhoto        string        `json:"id_front_photo"`
	IDBackPhoto         string        `json:"id_back_photo"`
	ResidencesToPublish int           `json:"residences_to_publish"`
	AccountStatus       AccountStatus `json:"account_status"`
}

type Person struct {
	ID          int64         `json:"id"`
	Email       string        `json:"email"`
	Username    string        `json:"username"`
	Password    string        `json:"-"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	PhoneNumber string        `json:"phone_number,omitempty"`
	Profile     *OwnerProfile `json:"profile,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (p *Person) Role() Role {
	if p.Profile != nil {
		return RoleOwner
	}
	return RoleRenter
}

func (p *Person) AccountStatus() AccountStatus {
	if p.Profile != nil {
		return p.Profile.AccountStatus
	}
	return AccountActive
}

// ResidencesToPublish is zero for renters.
func (p *Person) ResidencesToPublish() int {
	if p.Profile != nil {
		return p.Profile.ResidencesToPublish
	}
	return 0
}
