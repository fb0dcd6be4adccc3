// Package session models the ambient browser-storage state of the original
// front desk as an explicit store: subject identity, role, per-page
// authorization marks and the note list all live under session-scoped keys
// that a logout removes in one sweep.
package session

import (
	"context"
	"fmt"
)

// Store provides session-scoped access to the underlying key-value storage.
type Store struct {
	kv KV
}

// NewStore wraps a KV in session key semantics.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func sessionPrefix(subject string) string {
	return fmt.Sprintf("session:%s:", subject)
}

func roleKey(subject string) string {
	return sessionPrefix(subject) + "role"
}

func authorizedKey(subject, pageProfile string) string {
	return sessionPrefix(subject) + "authorized:" + pageProfile
}

// NotesKey is the session-scoped storage key of the subject's note list.
func NotesKey(subject string) string {
	return sessionPrefix(subject) + "notes"
}

// Login records the subject's role, creating the session.
func (s *Store) Login(ctx context.Context, subject, role string) error {
	return s.kv.Set(ctx, roleKey(subject), role)
}

// Role returns the subject's role and whether a session exists.
func (s *Store) Role(ctx context.Context, subject string) (string, bool, error) {
	return s.kv.Get(ctx, roleKey(subject))
}

// Logout removes every session-scoped key for the subject: identity, cached
// access decisions and notes.
func (s *Store) Logout(ctx context.Context, subject string) error {
	return s.kv.DeletePrefix(ctx, sessionPrefix(subject))
}

// Authorized reports whether a granted access decision is cached for the
// subject and page profile.
func (s *Store) Authorized(ctx context.Context, subject, pageProfile string) (bool, error) {
	val, ok, err := s.kv.Get(ctx, authorizedKey(subject, pageProfile))
	if err != nil {
		return false, err
	}
	return ok && val == "true", nil
}

// SetAuthorized caches a granted access decision.
func (s *Store) SetAuthorized(ctx context.Context, subject, pageProfile string) error {
	return s.kv.Set(ctx, authorizedKey(subject, pageProfile), "true")
}

// ClearAuthorized removes a cached access decision, if any.
func (s *Store) ClearAuthorized(ctx context.Context, subject, pageProfile string) error {
	return s.kv.Delete(ctx, authorizedKey(subject, pageProfile))
}

// KV exposes the raw storage for collaborators that manage their own
// session-scoped keys (the note store).
func (s *Store) KV() KV {
	return s.kv
}
