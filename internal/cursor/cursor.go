package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrStale is returned when a cursor no longer points into the listing,
// either because the filter changed or the last row disappeared.
var ErrStale = errors.New("stale cursor")

// Cursor marks where a page of rows ended
type Cursor struct {
	// Filter fingerprints the request the page was cut from
	Filter string `json:"filter"`
	// After is the key of the last row returned
	After string `json:"after"`
}

// Fingerprint hashes any JSON-encodable filter description
func Fingerprint(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint filter: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

// Encode serializes the cursor to an opaque base64 string
func (c *Cursor) Encode() (string, error) {
	if c.After == "" {
		return "", fmt.Errorf("cursor missing last key")
	}

	jsonData, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(jsonData), nil
}

// Decode deserializes a cursor from an opaque base64 string
func Decode(encoded string) (*Cursor, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty cursor string")
	}

	jsonData, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(jsonData, &c); err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}
	if c.After == "" {
		return nil, fmt.Errorf("cursor missing last key")
	}

	return &c, nil
}

// Page returns up to limit items that follow the item whose key is after.
// An empty after starts at the first item and a limit of zero or less
// returns the rest of the list. next is empty on the last page.
func Page[T any](items []T, key func(T) string, filter, after string, limit int) (page []T, next string, err error) {
	start := 0
	if after != "" {
		start = -1
		for i, it := range items {
			if key(it) == after {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, "", fmt.Errorf("%w: %s is no longer listed", ErrStale, after)
		}
	}

	rest := items[start:]
	if limit <= 0 || limit >= len(rest) {
		return rest, "", nil
	}

	page = rest[:limit]
	c := Cursor{Filter: filter, After: key(page[len(page)-1])}
	next, err = c.Encode()
	if err != nil {
		return nil, "", err
	}
	return page, next, nil
}

// Resume decodes encoded and checks that it was cut from filter. It
// returns the key to continue after; an empty encoded resumes from the
// start.
func Resume(encoded, filter string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	c, err := Decode(encoded)
	if err != nil {
		return "", err
	}
	if c.Filter != filter {
		return "", fmt.Errorf("%w: cursor belongs to a different filter", ErrStale)
	}
	return c.After, nil
}
