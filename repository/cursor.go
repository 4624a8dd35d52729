package repository

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/donelist/backend/domain"
)

// Cursor marks the keyset position after the last item of a page. Listings
// order by (created_at DESC, id DESC), so the pair identifies a unique row.
type Cursor struct {
	CreatedAt time.Time `json:"c"`
	ID        string    `json:"i"`
}

// EncodeCursor serializes a cursor into the opaque token handed to clients.
func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a client-supplied token. An empty token means the first
// page; anything malformed is rejected as an invalid cursor.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, domain.ErrInvalidCursor
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return nil, domain.ErrInvalidCursor
	}
	return &c, nil
}
