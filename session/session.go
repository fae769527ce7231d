// Package session holds the client-side authentication session: the token
// pair, the actor snapshot and their persistence.
package session

import (
	"slices"
	"time"

	"golang.org/x/oauth2"
)

// State is the coordinator's view of the session lifecycle.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "ANONYMOUS"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateRefreshing:
		return "REFRESHING"
	}
	return "UNKNOWN"
}

// Actor is the identity snapshot fetched after login.
type Actor struct {
	ID                int64    `json:"memberId"`
	LoginID           string   `json:"loginId"`
	DisplayName       string   `json:"memberName"`
	DeptID            int64    `json:"deptId,omitempty"`
	Position          string   `json:"position,omitempty"`
	Roles             []string `json:"roles"`
	IsInitialPassword bool     `json:"isInitialPassword"`
}

// HasRole reports whether the actor holds role.
func (a *Actor) HasRole(role string) bool {
	if a == nil {
		return false
	}
	return slices.Contains(a.Roles, role)
}

// Session is the token pair plus the actor it belongs to. The zero value is
// an anonymous session.
type Session struct {
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"` // access token expiry, zero when unknown
	Actor        *Actor    `json:"user,omitempty"`
}

// IsAuthenticated reports whether an access token is held.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.AccessToken != ""
}

// Token adapts the session to an oauth2 token for header attachment.
func (s *Session) Token() *oauth2.Token {
	if s == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.Expiry,
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Actor != nil {
		a := *s.Actor
		a.Roles = slices.Clone(s.Actor.Roles)
		c.Actor = &a
	}
	return &c
}
