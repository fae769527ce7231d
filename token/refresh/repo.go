package refresh

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("refresh token not found")

// StoredRefreshToken represents the server-side storage of refresh token metadata.
// The client only receives the Token field (a random string). All other fields are
// server-side metadata used for validation and rotation.
type StoredRefreshToken struct {
	Token    string    `json:"token"`    // The actual random token string (sent to client)
	MemberID int64     `json:"memberId"` // Owner of the token
	Iat      time.Time `json:"iat"`      // Issued at time
	Exp      time.Time `json:"exp"`      // Expiry
}

// Repo manages server-side storage of refresh token metadata. A member may
// hold several tokens at once, one per signed-in client.
type Repo interface {
	Upsert(ctx context.Context, refreshToken *StoredRefreshToken) error
	// Get returns ErrNotFound for unknown tokens.
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error
	// Consume removes and returns the token in one step. Of two concurrent
	// calls for the same token only one gets it, the other ErrNotFound.
	Consume(ctx context.Context, token string) (*StoredRefreshToken, error)
	// DeleteByMember removes every token of the member and reports how many.
	DeleteByMember(ctx context.Context, memberID int64) (int, error)
	ListByMember(ctx context.Context, memberID int64) ([]*StoredRefreshToken, error)
}
