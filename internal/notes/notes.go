// Package notes keeps each subject's free-form note list in session storage as
// a versioned JSON envelope with a bounded note count. Payloads written by the
// pre-envelope format (a bare JSON array) are still readable and get rewritten
// in the current format on the next mutation.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"guiche-backend/internal/session"
)

const schemaVersion = 1

var (
	// ErrNotFound is returned when no note has the requested ID.
	ErrNotFound = errors.New("note not found")
	// ErrLimitReached is returned when adding would exceed the note cap.
	ErrLimitReached = errors.New("note limit reached")
)

// Note is one free-form note.
type Note struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type envelope struct {
	Version int    `json:"version"`
	Notes   []Note `json:"notes"`
}

// Store reads and writes note lists in the session key-value storage.
type Store struct {
	kv       session.KV
	maxNotes int
}

// NewStore creates a note store capped at maxNotes per subject.
func NewStore(kv session.KV, maxNotes int) *Store {
	return &Store{kv: kv, maxNotes: maxNotes}
}

// List returns the subject's notes, oldest first.
func (s *Store) List(ctx context.Context, subject string) ([]Note, error) {
	notes, _, err := s.load(ctx, subject)
	return notes, err
}

// Add appends a new note and returns it with its assigned ID.
func (s *Store) Add(ctx context.Context, subject, title, content string) (Note, error) {
	notes, _, err := s.load(ctx, subject)
	if err != nil {
		return Note{}, err
	}
	if len(notes) >= s.maxNotes {
		return Note{}, ErrLimitReached
	}

	var maxID int64
	for _, n := range notes {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	note := Note{ID: maxID + 1, Title: title, Content: content}
	notes = append(notes, note)

	if err := s.save(ctx, subject, notes); err != nil {
		return Note{}, err
	}
	return note, nil
}

// Update replaces the title and content of the identified note.
func (s *Store) Update(ctx context.Context, subject string, id int64, title, content string) error {
	notes, _, err := s.load(ctx, subject)
	if err != nil {
		return err
	}
	for i := range notes {
		if notes[i].ID == id {
			notes[i].Title = title
			notes[i].Content = content
			return s.save(ctx, subject, notes)
		}
	}
	return ErrNotFound
}

// Delete removes the identified note.
func (s *Store) Delete(ctx context.Context, subject string, id int64) error {
	notes, _, err := s.load(ctx, subject)
	if err != nil {
		return err
	}
	for i := range notes {
		if notes[i].ID == id {
			notes = append(notes[:i], notes[i+1:]...)
			return s.save(ctx, subject, notes)
		}
	}
	return ErrNotFound
}

// load decodes the stored payload. The returned version is 0 for legacy bare
// arrays, schemaVersion otherwise.
func (s *Store) load(ctx context.Context, subject string) ([]Note, int, error) {
	raw, ok, err := s.kv.Get(ctx, session.NotesKey(subject))
	if err != nil {
		return nil, 0, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []Note{}, schemaVersion, nil
	}

	if strings.HasPrefix(strings.TrimSpace(raw), "[") {
		var notes []Note
		if err := json.Unmarshal([]byte(raw), &notes); err != nil {
			return nil, 0, fmt.Errorf("failed to decode legacy note list: %w", err)
		}
		return notes, 0, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, 0, fmt.Errorf("failed to decode note list: %w", err)
	}
	if env.Notes == nil {
		env.Notes = []Note{}
	}
	return env.Notes, env.Version, nil
}

func (s *Store) save(ctx context.Context, subject string, notes []Note) error {
	payload, err := json.Marshal(envelope{Version: schemaVersion, Notes: notes})
	if err != nil {
		return fmt.Errorf("failed to encode note list: %w", err)
	}
	return s.kv.Set(ctx, session.NotesKey(subject), string(payload))
}
