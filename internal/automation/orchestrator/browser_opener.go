package orchestrator

import (
	"context"

	"formrunner/internal/automation/filler"
	"formrunner/internal/domain/entity"
	"formrunner/internal/infrastructure/browser"
)

// browserOpener adapts the rod-backed session manager and filler to the
// orchestrator's ports.
type browserOpener struct {
	mgr  *browser.Manager
	fill *filler.Filler
}

func NewBrowserOpener(mgr *browser.Manager, fill *filler.Filler) Opener {
	return &browserOpener{mgr: mgr, fill: fill}
}

func (o *browserOpener) Open(ctx context.Context, runID string) (Session, error) {
	sess, err := o.mgr.Open(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &fillSession{Session: sess, fill: o.fill}, nil
}

type fillSession struct {
	*browser.Session
	fill *filler.Filler
}

func (s *fillSession) Fill(ctx context.Context, spec entity.FieldSpec) entity.FillOutcome {
	return s.fill.Fill(ctx, s.Page(), spec)
}
