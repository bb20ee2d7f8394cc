package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/resirent/internal/person"
)

const TypeAccess = "access"

// Pair is the credential pair handed out on login and refresh.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims are the identity attributes embedded in the access token.
type Claims struct {
	UserID              int64                `json:"user_id"`
	Email               string               `json:"email,omitempty"`
	FirstName           string               `json:"first_name,omitempty"`
	LastName            string               `json:"last_name,omitempty"`
	Role                person.Role          `json:"role"`
	AccountStatus       person.AccountStatus `json:"account_status,omitempty"`
	ResidencesToPublish int                  `json:"residences_to_publish,omitempty"`
	TokenType           string               `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsOwner() bool {
	return c != nil && c.Role == person.RoleOwner
}
