// Package cursor encodes and decodes the opaque pagination tokens used by
// expense listing. A token pins the (occurredAt, id) position of the last
// row of a page so the next page can resume with a strict keyset predicate.
package cursor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCursor reports a token that is structurally malformed. Callers
// must reject the request rather than fall back to the first page.
var ErrInvalidCursor = errors.New("invalid cursor")

// separator never appears in an RFC 3339 timestamp or a UUID, so a valid
// token always splits into exactly two segments.
const separator = "|"

// Position is a decoded cursor: the sort tuple of the last row returned.
type Position struct {
	OccurredAt time.Time
	ID         string
}

// Encode serializes a position into an opaque token. The timestamp is
// normalized to UTC so tokens are stable regardless of the zone attached to
// occurredAt.
func Encode(occurredAt time.Time, id string) string {
	return occurredAt.UTC().Format(time.RFC3339Nano) + separator + id
}

// Decode parses and validates a token produced by Encode. It returns
// ErrInvalidCursor when the token does not have exactly two non-empty
// segments, the first segment is not an RFC 3339 timestamp, or the second
// is not a UUID.
func Decode(token string) (Position, error) {
	parts := strings.Split(token, separator)
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("%w: expected 2 segments, got %d", ErrInvalidCursor, len(parts))
	}
	if parts[0] == "" || parts[1] == "" {
		return Position{}, fmt.Errorf("%w: empty segment", ErrInvalidCursor)
	}

	occurredAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return Position{}, fmt.Errorf("%w: bad timestamp %q", ErrInvalidCursor, parts[0])
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return Position{}, fmt.Errorf("%w: bad id %q", ErrInvalidCursor, parts[1])
	}

	return Position{OccurredAt: occurredAt.UTC(), ID: id.String()}, nil
}
