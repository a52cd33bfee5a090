// Package orchestrator sequences one automation run: open session,
// navigate, wait for the form, fill every field, capture screenshots,
// and hand the page to the operator. The run always ends in manual
// review; there is no code path that submits the target form.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formrunner/internal/automation/provider"
	"formrunner/internal/domain/entity"
)

// Session is the slice of browser behavior the orchestrator needs.
// Implemented by the rod-backed session adapter; faked in tests.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitFormReady() error
	Fill(ctx context.Context, spec entity.FieldSpec) entity.FillOutcome
	Screenshot(label string) (string, error)
	Screenshots() []string
	ShowCompletionBanner(filled, total int)
	Close()
}

type Opener interface {
	Open(ctx context.Context, runID string) (Session, error)
}

// ReviewPolicy governs what happens after filling completes. This is the
// single most important safety/UX parameter of the system, so it is
// always explicit: auto-close after a delay for API flows, or keep the
// browser open for operator-driven debugging.
type ReviewPolicy struct {
	AutoClose  bool
	CloseDelay time.Duration
}

func DefaultReviewPolicy() ReviewPolicy {
	return ReviewPolicy{AutoClose: true, CloseDelay: 5 * time.Second}
}

type Config struct {
	// SuccessThreshold is the minimum number of filled fields for a run
	// to report success. The historical policy is 1 ("at least one
	// field"); raise it per deployment if that is too lenient.
	SuccessThreshold int
	Review           ReviewPolicy
}

// Progress is invoked before each field attempt and after each outcome,
// so polling clients can watch the run advance.
type Progress func(currentField string, filled, total int)

// Request is one orchestration run to execute.
type Request struct {
	Provider   *provider.Provider
	Values     map[string]string
	Review     *ReviewPolicy // nil = orchestrator default
	OnProgress Progress      // optional
}

type Orchestrator struct {
	opener Opener
	cfg    Config
	log    *zap.Logger
}

func New(opener Opener, cfg Config, log *zap.Logger) *Orchestrator {
	if cfg.SuccessThreshold < 1 {
		cfg.SuccessThreshold = 1
	}
	if cfg.Review == (ReviewPolicy{}) {
		cfg.Review = DefaultReviewPolicy()
	}
	return &Orchestrator{opener: opener, cfg: cfg, log: log}
}

// Run executes one complete automation run and always returns a
// structured result: session-setup failures and panics degrade to
// success=false results, never to an escaped error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (res entity.AutomationResult) {
	runID := shortRunID()
	log := o.log.With(zap.String("run_id", runID), zap.String("provider", req.Provider.Key))

	specs := req.Provider.BuildFieldSpecs(req.Values)
	sessionData := req.Provider.SessionData(specs)

	defer func() {
		if r := recover(); r != nil {
			log.Error("run panicked", zap.Any("panic", r))
			res = entity.FailedResult(req.Provider.Key, req.Provider.PortalURL, sessionData, nil,
				fmt.Errorf("internal automation error: %v", r))
		}
	}()

	review := o.cfg.Review
	if req.Review != nil {
		review = *req.Review
	}

	log.Info("automation run starting",
		zap.Int("fields", len(specs)),
		zap.Bool("auto_close", review.AutoClose))

	sess, err := o.opener.Open(ctx, runID)
	if err != nil {
		log.Error("session open failed", zap.Error(err))
		return entity.FailedResult(req.Provider.Key, req.Provider.PortalURL, sessionData, nil, err)
	}
	defer o.finishReview(sess, review, log)

	if err := sess.Navigate(ctx, req.Provider.PortalURL); err != nil {
		// Non-fatal: the fill phase will simply find nothing if the page
		// never materialized.
		log.Warn("navigation problem, continuing anyway", zap.Error(err))
	}
	if err := sess.WaitFormReady(); err != nil {
		log.Warn("form not detected within timeout, continuing anyway", zap.Error(err))
	}

	if _, err := sess.Screenshot("page_loaded"); err != nil {
		log.Warn("screenshot failed", zap.String("label", "page_loaded"), zap.Error(err))
	}

	outcomes := o.fillAll(ctx, sess, specs, req.OnProgress, log)

	filled := 0
	for _, out := range outcomes {
		if out.Succeeded {
			filled++
		}
	}
	sess.ShowCompletionBanner(filled, len(outcomes))

	if _, err := sess.Screenshot("form_filled"); err != nil {
		log.Warn("screenshot failed", zap.String("label", "form_filled"), zap.Error(err))
	}
	if _, err := sess.Screenshot("ready_for_review"); err != nil {
		log.Warn("screenshot failed", zap.String("label", "ready_for_review"), zap.Error(err))
	}

	res = entity.NewAutomationResult(
		req.Provider.Key,
		req.Provider.PortalURL,
		outcomes,
		sess.Screenshots(),
		sessionData,
		o.cfg.SuccessThreshold,
	)

	log.Info("automation run finished",
		zap.Bool("success", res.Success),
		zap.Int("fields_filled", res.FieldsFilled),
		zap.Int("total_fields", res.TotalFields),
		zap.String("success_rate", res.SuccessRate))

	return res
}

// fillAll processes specs strictly in declared order. A single field's
// failure never short-circuits the rest; every spec yields exactly one
// outcome.
func (o *Orchestrator) fillAll(ctx context.Context, sess Session, specs []entity.FieldSpec, progress Progress, log *zap.Logger) []entity.FillOutcome {
	outcomes := make([]entity.FillOutcome, 0, len(specs))
	filled := 0

	for _, spec := range specs {
		if progress != nil {
			progress(spec.Name, filled, len(specs))
		}

		out := sess.Fill(ctx, spec)
		outcomes = append(outcomes, out)
		if out.Succeeded {
			filled++
		} else {
			fields := []zap.Field{
				zap.String("field", spec.Name),
				zap.String("detail", out.ErrorDetail),
			}
			if spec.Critical {
				log.Error("critical field not filled", fields...)
			} else {
				log.Warn("field not filled", fields...)
			}
		}

		if progress != nil {
			progress(spec.Name, filled, len(specs))
		}
	}

	return outcomes
}

// finishReview applies the review policy: wait and close, or leave the
// browser open for the operator and deliberately leak the session.
func (o *Orchestrator) finishReview(sess Session, review ReviewPolicy, log *zap.Logger) {
	if !review.AutoClose {
		log.Info("browser left open for manual review; close it yourself when done")
		return
	}
	if review.CloseDelay > 0 {
		log.Info("auto-close armed", zap.Duration("delay", review.CloseDelay))
		time.Sleep(review.CloseDelay)
	}
	sess.Close()
}

func shortRunID() string {
	return uuid.NewString()[:8]
}
