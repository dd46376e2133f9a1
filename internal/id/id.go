// Package id formats and parses the friendly ids shown next to notes.
package id

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NotePrefix starts every note id
const NotePrefix = "N-"

var (
	notePattern = regexp.MustCompile(`(?i)^(?:n-)?0*(\d{1,9})$`)
	uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// FormatNote formats a note friendly ID
func FormatNote(seq int) string {
	return fmt.Sprintf("%s%05d", NotePrefix, seq)
}

// ParseNote reads a note reference. The prefix and the zero padding are
// optional, so "N-00003", "n-3" and "3" all name note 3.
func ParseNote(ref string) (int, error) {
	m := notePattern.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return 0, fmt.Errorf("invalid note ID: %s", ref)
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil || seq == 0 {
		return 0, fmt.Errorf("invalid note ID: %s", ref)
	}
	return seq, nil
}

// IsUUID checks if a string is a valid UUID
func IsUUID(s string) bool {
	return uuidPattern.MatchString(strings.ToLower(s))
}
