// Package filler writes values into located elements and reports
// per-field outcomes as values. Exceptions are reserved for fatal
// session problems; a field that cannot be filled is data, not an error.
package filler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"formrunner/internal/automation/locator"
	"formrunner/internal/domain/entity"
)

// Mode selects how text is written into inputs.
type Mode string

const (
	// ModeKeystrokes types character by character with a short delay.
	// Meant for visible demonstrations.
	ModeKeystrokes Mode = "keystrokes"
	// ModeDirect assigns the value in bulk and dispatches synthetic
	// input/change events, which frameworks listening for those need.
	ModeDirect Mode = "direct"
)

type Config struct {
	Mode           Mode
	KeystrokeDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Mode:           ModeDirect,
		KeystrokeDelay: 50 * time.Millisecond,
	}
}

type Filler struct {
	loc *locator.Locator
	cfg Config
	log *zap.Logger
}

func New(loc *locator.Locator, cfg Config, log *zap.Logger) *Filler {
	if cfg.Mode == "" {
		cfg.Mode = ModeDirect
	}
	if cfg.KeystrokeDelay <= 0 {
		cfg.KeystrokeDelay = 50 * time.Millisecond
	}
	return &Filler{loc: loc, cfg: cfg, log: log}
}

// Fill attempts one FieldSpec against the current page. It walks the
// locator's candidates in cascade order; the first element that accepts
// the write wins. Always returns an outcome, never panics out.
func (f *Filler) Fill(ctx context.Context, page *rod.Page, spec entity.FieldSpec) entity.FillOutcome {
	outcome := entity.FillOutcome{
		FieldName:      spec.Name,
		AttemptedValue: spec.Value,
		Critical:       spec.Critical,
	}

	if spec.Value == "" {
		outcome.ErrorDetail = "no value provided"
		return outcome
	}

	cands := f.loc.Candidates(page, spec)
	if len(cands) == 0 {
		outcome.ErrorDetail = "no matching element found on page"
		return outcome
	}

	var lastErr error
	for _, cand := range cands {
		el := cand.Element.Context(ctx)

		strategy, err := f.act(el, spec)
		if err != nil {
			lastErr = err
			f.log.Debug("fill attempt failed, trying next candidate",
				zap.String("field", spec.Name),
				zap.String("strategy", string(cand.Strategy)),
				zap.String("detail", cand.Detail),
				zap.Error(err))
			continue
		}

		f.highlight(el)
		outcome.Succeeded = true
		outcome.StrategyUsed = cand.Strategy
		if strategy != "" {
			outcome.StrategyUsed = strategy
		}
		f.log.Info("field filled",
			zap.String("field", spec.Name),
			zap.String("strategy", string(outcome.StrategyUsed)))
		return outcome
	}

	outcome.ErrorDetail = fmt.Sprintf("all candidates rejected the write: %v", lastErr)
	return outcome
}

// act performs the interaction appropriate for the element. The returned
// strategy is non-empty only when it refines the locate strategy
// (dropdown text vs value selection).
func (f *Filler) act(el *rod.Element, spec entity.FieldSpec) (entity.Strategy, error) {
	// Best effort, failures ignored.
	_ = el.ScrollIntoView()

	tag, err := elementTag(el)
	if err != nil {
		return "", fmt.Errorf("inspect element: %w", err)
	}

	if tag == "select" {
		return f.selectOption(el, spec.Value)
	}
	return "", f.writeText(el, spec.Value)
}

// selectOption tries exact trimmed visible-text match first, then the
// underlying option value.
func (f *Filler) selectOption(el *rod.Element, value string) (entity.Strategy, error) {
	res, err := el.Eval(`(value) => {
		const opts = Array.from(this.options);
		let hit = opts.find(o => o.text.trim() === value);
		if (hit) {
			this.value = hit.value;
			this.dispatchEvent(new Event('change', {bubbles: true}));
			return 'text';
		}
		hit = opts.find(o => o.value === value);
		if (hit) {
			this.value = hit.value;
			this.dispatchEvent(new Event('change', {bubbles: true}));
			return 'value';
		}
		return '';
	}`, value)
	if err != nil {
		return "", fmt.Errorf("select interaction: %w", err)
	}

	switch res.Value.Str() {
	case "text":
		return entity.StrategyDropdownText, nil
	case "value":
		return entity.StrategyDropdownValue, nil
	default:
		return "", fmt.Errorf("no option matches %q by text or value", value)
	}
}

func (f *Filler) writeText(el *rod.Element, value string) error {
	// Clear existing content first.
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}

	if f.cfg.Mode == ModeKeystrokes {
		for _, r := range value {
			if err := el.Input(string(r)); err != nil {
				return fmt.Errorf("keystroke input: %w", err)
			}
			time.Sleep(f.cfg.KeystrokeDelay)
		}
		return nil
	}

	_, err := el.Eval(`(value) => {
		this.value = value;
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`, value)
	if err != nil {
		return fmt.Errorf("direct input: %w", err)
	}
	return nil
}

// highlight marks a successfully filled element for the operator.
// Cosmetic only, never affects the outcome.
func (f *Filler) highlight(el *rod.Element) {
	_, _ = el.Eval(`() => {
		this.style.backgroundColor = '#d4edda';
		this.style.border = '2px solid #28a745';
	}`)
}

func elementTag(el *rod.Element) (string, error) {
	res, err := el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}
