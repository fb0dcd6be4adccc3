// Package gate decides, once per session per protected page, whether a subject
// may view the page. Granted decisions are cached in the session store so page
// reloads never re-contact the remote decision service; an explicit logout is
// the only thing that clears them.
package gate

import (
	"context"
	"log"

	"guiche-backend/internal/session"
)

// Checker is the remote access decision service.
type Checker interface {
	CheckAccess(ctx context.Context, subjectName, pageProfile string) (bool, error)
}

// Offliner marks a subject offline at the remote source on logout.
type Offliner interface {
	SetOffline(ctx context.Context, subjectName string) error
}

// Gate combines the remote decision service with the session-scoped cache.
type Gate struct {
	sessions *session.Store
	checker  Checker
	offliner Offliner
}

// New creates a gate. offliner may be nil when logout should not notify the
// remote source.
func New(sessions *session.Store, checker Checker, offliner Offliner) *Gate {
	return &Gate{sessions: sessions, checker: checker, offliner: offliner}
}

// CheckAccess reports whether the subject may view pages tagged with the given
// profile. The decision cache is keyed by the page's static profile tag, never
// by a request path. All failures deny: a subject is never let through on the
// strength of an error.
func (g *Gate) CheckAccess(ctx context.Context, subjectName, pageProfile string) bool {
	if subjectName == "" {
		return false
	}

	cached, err := g.sessions.Authorized(ctx, subjectName, pageProfile)
	if err != nil {
		log.Printf("error reading cached access decision for %q/%q: %v", subjectName, pageProfile, err)
	} else if cached {
		return true
	}

	granted, err := g.checker.CheckAccess(ctx, subjectName, pageProfile)
	if err != nil {
		log.Printf("error checking access for %q/%q: %v", subjectName, pageProfile, err)
		if clearErr := g.sessions.ClearAuthorized(ctx, subjectName, pageProfile); clearErr != nil {
			log.Printf("error clearing access decision for %q/%q: %v", subjectName, pageProfile, clearErr)
		}
		return false
	}

	if granted {
		if err := g.sessions.SetAuthorized(ctx, subjectName, pageProfile); err != nil {
			log.Printf("error caching access decision for %q/%q: %v", subjectName, pageProfile, err)
		}
		return true
	}

	if err := g.sessions.ClearAuthorized(ctx, subjectName, pageProfile); err != nil {
		log.Printf("error clearing access decision for %q/%q: %v", subjectName, pageProfile, err)
	}
	return false
}

// Logout tears the subject's session down, removing the identity and every
// cached decision, then best-effort notifies the remote source that the
// subject is offline.
func (g *Gate) Logout(ctx context.Context, subjectName string) error {
	if err := g.sessions.Logout(ctx, subjectName); err != nil {
		return err
	}
	if g.offliner != nil {
		if err := g.offliner.SetOffline(ctx, subjectName); err != nil {
			log.Printf("error marking %q offline: %v", subjectName, err)
		}
	}
	return nil
}
