// Package locator resolves a logical field to concrete elements on an
// uncontrolled page through an ordered cascade of heuristics. All page
// queries are non-blocking: zero matches is a normal answer, never an
// error.
package locator

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"formrunner/internal/domain/entity"
	"formrunner/internal/infrastructure/formprobe"
)

// Candidate is one element a fill may be attempted on, tagged with the
// strategy that produced it. Candidates are ordered by cascade priority;
// the filler walks them until one accepts the write.
type Candidate struct {
	Element  *rod.Element
	Strategy entity.Strategy
	Detail   string // the selector, xpath or ordinal that matched
}

const upperAlpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const lowerAlpha = "abcdefghijklmnopqrstuvwxyz"

type Locator struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Locator {
	return &Locator{log: log}
}

// Candidates runs the full cascade and returns every distinct element
// found, in strategy order: exact id/name, CSS selector list, label-text
// proximity, positional fallback. First-match-wins within each level;
// elements are never scored or ranked.
func (l *Locator) Candidates(page *rod.Page, spec entity.FieldSpec) []Candidate {
	var out []Candidate
	seen := map[proto.RuntimeRemoteObjectID]bool{}

	add := func(el *rod.Element, strategy entity.Strategy, detail string) {
		if el == nil || el.Object == nil || seen[el.Object.ObjectID] {
			return
		}
		seen[el.Object.ObjectID] = true
		out = append(out, Candidate{Element: el, Strategy: strategy, Detail: detail})
	}

	if spec.ExactID != "" {
		sel := fmt.Sprintf("[id='%s'], [name='%s']", spec.ExactID, spec.ExactID)
		add(l.first(page, sel), entity.StrategyExactID, sel)
	}

	for _, sel := range spec.Selectors {
		add(l.first(page, sel), entity.StrategyCSSSelector, sel)
	}

	tag := "input"
	if spec.Kind == entity.FieldDropdown {
		tag = "select"
	}
	for _, label := range spec.LabelTexts {
		for _, xp := range labelXPaths(tag, label) {
			add(l.firstX(page, xp), entity.StrategyLabelText, xp)
		}
	}

	if spec.Ordinal > 0 && spec.Kind == entity.FieldText {
		if el := l.nthGenericInput(page, spec.Ordinal); el != nil {
			add(el, entity.StrategyPositional, fmt.Sprintf("generic input #%d", spec.Ordinal))
		}
	}

	if len(out) == 0 {
		l.logPageProbe(page, spec.Name)
	}

	return out
}

func (l *Locator) first(page *rod.Page, selector string) *rod.Element {
	els, err := page.Elements(selector)
	if err != nil {
		l.log.Debug("selector query failed", zap.String("selector", selector), zap.Error(err))
		return nil
	}
	if len(els) == 0 {
		return nil
	}
	return els.First()
}

func (l *Locator) firstX(page *rod.Page, xpath string) *rod.Element {
	els, err := page.ElementsX(xpath)
	if err != nil {
		l.log.Debug("xpath query failed", zap.String("xpath", xpath), zap.Error(err))
		return nil
	}
	if len(els) == 0 {
		return nil
	}
	return els.First()
}

// nthGenericInput implements the positional fallback: the Nth generic
// text-like input on the page. The least reliable strategy, used last.
func (l *Locator) nthGenericInput(page *rod.Page, ordinal int) *rod.Element {
	els, err := page.Elements(`input[type='text'], input[type='tel'], input[type='email'], input:not([type])`)
	if err != nil || len(els) < ordinal {
		return nil
	}
	return els[ordinal-1]
}

// labelXPaths builds the label-proximity patterns for one candidate
// label string: input following a matching label, input inside the same
// container, and input whose placeholder contains the string. Matching
// is case-insensitive via the translate() trick.
func labelXPaths(tag, label string) []string {
	needle := strings.ToLower(label)
	labelCond := fmt.Sprintf("contains(translate(., '%s', '%s'), '%s')", upperAlpha, lowerAlpha, needle)
	placeholderCond := fmt.Sprintf("@placeholder[contains(translate(., '%s', '%s'), '%s')]", upperAlpha, lowerAlpha, needle)

	return []string{
		fmt.Sprintf("//label[%s]/following-sibling::%s[1]", labelCond, tag),
		fmt.Sprintf("//label[%s]/..//%s", labelCond, tag),
		fmt.Sprintf("//%s[%s]", tag, placeholderCond),
	}
}

// logPageProbe dumps a form-structure summary when a field could not be
// located at any cascade level, so the failure is debuggable after the
// session is gone.
func (l *Locator) logPageProbe(page *rod.Page, fieldName string) {
	html, err := page.HTML()
	if err != nil {
		l.log.Warn("page probe failed", zap.String("field", fieldName), zap.Error(err))
		return
	}
	controls := formprobe.Probe(html)
	l.log.Warn("no element found for field",
		zap.String("field", fieldName),
		zap.String("page_controls", formprobe.Summary(controls)))
}
