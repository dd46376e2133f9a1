// Package notes keeps the free-form checklist notes shown next to the item table.
package notes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lherron/farmlist/internal/id"
)

// Note is one checklist note.
type Note struct {
	UUID string `json:"uuid"`
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// List is an ordered note list.
type List struct {
	notes []Note
	seq   int
}

// Add appends a note and returns it
func (l *List) Add(text string) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, fmt.Errorf("note text cannot be empty")
	}
	l.seq++
	n := Note{UUID: uuid.NewString(), ID: id.FormatNote(l.seq), Text: text}
	l.notes = append(l.notes, n)
	return n, nil
}

// find locates a note by UUID or by friendly ID in any form ParseNote accepts.
func (l *List) find(ref string) int {
	ref = strings.TrimSpace(ref)
	if id.IsUUID(ref) {
		for i, n := range l.notes {
			if strings.EqualFold(n.UUID, ref) {
				return i
			}
		}
		return -1
	}
	seq, err := id.ParseNote(ref)
	if err != nil {
		return -1
	}
	want := id.FormatNote(seq)
	for i, n := range l.notes {
		if n.ID == want {
			return i
		}
	}
	return -1
}

// Toggle flips a note's done flag. ref is the friendly ID or the UUID.
func (l *List) Toggle(ref string) (Note, error) {
	i := l.find(ref)
	if i < 0 {
		return Note{}, fmt.Errorf("note not found: %s", ref)
	}
	l.notes[i].Done = !l.notes[i].Done
	return l.notes[i], nil
}

// Remove deletes a note
func (l *List) Remove(ref string) error {
	i := l.find(ref)
	if i < 0 {
		return fmt.Errorf("note not found: %s", ref)
	}
	l.notes = append(l.notes[:i], l.notes[i+1:]...)
	return nil
}

// ClearDone unchecks every note
func (l *List) ClearDone() {
	for i := range l.notes {
		l.notes[i].Done = false
	}
}

// All returns the notes with open ones first, in insertion order otherwise
func (l *List) All() []Note {
	out := append([]Note(nil), l.notes...)
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Done && out[j].Done
	})
	return out
}
