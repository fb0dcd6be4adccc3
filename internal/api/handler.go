package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"

	"guiche-backend/internal/gate"
	"guiche-backend/internal/liveview"
	"guiche-backend/internal/localinfo"
	"guiche-backend/internal/notes"
	"guiche-backend/internal/session"
	"guiche-backend/internal/store"
	"guiche-backend/internal/upstream"
)

// Upstream is the slice of the remote scheduling API the handlers call
// directly; the pollers talk to it on their own.
type Upstream interface {
	ValidateUser(ctx context.Context, subjectName, secret string) (string, error)
	SetOnline(ctx context.Context, subjectName string) error
	UpdateItemStatus(ctx context.Context, id int64, status upstream.Status) error
	UpdateItemDetails(ctx context.Context, id int64, details upstream.DetailsUpdate) error
	ListPlans(ctx context.Context) ([]upstream.Plan, error)
	CreatePlan(ctx context.Context, plan upstream.Plan) (upstream.Plan, error)
	UpdatePlan(ctx context.Context, id int64, plan upstream.Plan) error
	DeletePlan(ctx context.Context, id int64) error
}

// Deps are the collaborators shared by the API handlers.
type Deps struct {
	Upstream     Upstream
	Sessions     *session.Store
	Gate         *gate.Gate
	Notes        *notes.Store
	Store        store.Store
	Display      *liveview.LiveView
	Dashboards   *liveview.Registry
	LocalInfo    *localinfo.Service
	WebPush      *webpush.Options
	DisplaySlots int
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	deps Deps
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}
