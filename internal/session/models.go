package session

import (
	"github.com/mehmetcc/resirent/internal/token"
)

// Session is a snapshot of the stored credentials. Claims is nil when no
// pair is stored or the access token cannot be decoded.
type Session struct {
	Pair   *token.Pair
	Claims *token.Claims
}

func (s Session) Authenticated() bool {
	return s.Claims != nil
}

func (s Session) AccessToken() string {
	if s.Pair == nil {
		return ""
	}
	return s.Pair.Access
}

func (s Session) RefreshToken() string {
	if s.Pair == nil {
		return ""
	}
	return s.Pair.Refresh
}
