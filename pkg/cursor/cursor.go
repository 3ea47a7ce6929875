// Package cursor encodes pagination positions as opaque tokens.
//
// A token is the unpadded URL-safe base64 form of
// "<RFC3339Nano UTC timestamp>|<id>". The timestamp layout never produces
// '|', so the first separator always ends the timestamp and ids may contain
// any byte sequence, including the separator itself.
package cursor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

const separator = "|"

// ErrInvalidCursor is wrapped by every decode failure.
var ErrInvalidCursor = errors.New("invalid cursor")

// Bounds of the timestamps a token can carry. RFC 3339 has four-digit
// years, so times outside [MinTime, MaxTime] do not survive a round trip.
var (
	MinTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// Representable reports whether t can be encoded into a decodable token.
func Representable(t time.Time) bool {
	return !t.Before(MinTime) && !t.After(MaxTime)
}

// Position is a point in the (createdAt desc, id desc) document ordering.
type Position struct {
	CreatedAt time.Time
	ID        string
}

// Encode serializes a position into an opaque token.
func Encode(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + separator + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// EncodePosition is Encode for a Position value.
func EncodePosition(p Position) string {
	return Encode(p.CreatedAt, p.ID)
}

// Decode parses a token produced by Encode. Any failure is reported as an
// invalid document state wrapping ErrInvalidCursor.
func Decode(token string) (Position, error) {
	pos, err := decode(token)
	if err != nil {
		return Position{}, apperrors.InvalidDocumentState("Invalid pagination cursor").WithError(err)
	}
	return pos, nil
}

func decode(token string) (Position, error) {
	if token == "" {
		return Position{}, fmt.Errorf("%w: empty token", ErrInvalidCursor)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	stamp, id, ok := strings.Cut(string(raw), separator)
	if !ok || stamp == "" || id == "" {
		return Position{}, fmt.Errorf("%w: malformed payload", ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return Position{CreatedAt: createdAt.UTC(), ID: id}, nil
}

// After reports whether (createdAt, id) sorts strictly after p in
// descending (createdAt, id) order.
func (p Position) After(createdAt time.Time, id string) bool {
	if createdAt.Before(p.CreatedAt) {
		return true
	}
	return createdAt.Equal(p.CreatedAt) && id < p.ID
}
