package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formrunner/internal/automation/provider"
	"formrunner/internal/domain/entity"
	"formrunner/internal/infrastructure/browser"
)

// fakeSession records the orchestrator's calls and fills fields
// according to a scripted success set.
type fakeSession struct {
	fillOK      map[string]bool
	navErr      error
	formErr     error
	shotErr     error
	filled      []string
	shots       []string
	closed      bool
	bannerShown bool
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error { return s.navErr }

func (s *fakeSession) WaitFormReady() error { return s.formErr }

func (s *fakeSession) Fill(ctx context.Context, spec entity.FieldSpec) entity.FillOutcome {
	s.filled = append(s.filled, spec.Name)
	out := entity.FillOutcome{FieldName: spec.Name, AttemptedValue: spec.Value, Critical: spec.Critical}
	if s.fillOK[spec.Name] {
		out.Succeeded = true
		out.StrategyUsed = entity.StrategyCSSSelector
	} else {
		out.ErrorDetail = "no matching element found on page"
	}
	return out
}

func (s *fakeSession) Screenshot(label string) (string, error) {
	if s.shotErr != nil {
		return "", s.shotErr
	}
	path := label + ".jpg"
	s.shots = append(s.shots, path)
	return path, nil
}

func (s *fakeSession) Screenshots() []string { return s.shots }

func (s *fakeSession) ShowCompletionBanner(filled, total int) { s.bannerShown = true }

func (s *fakeSession) Close() { s.closed = true }

type fakeOpener struct {
	sess *fakeSession
	err  error
}

func (o *fakeOpener) Open(ctx context.Context, runID string) (Session, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.sess, nil
}

func torrentRequest(values map[string]string) Request {
	p, _ := provider.Lookup("torrent_power")
	return Request{Provider: p, Values: values}
}

func newTestOrchestrator(opener Opener, threshold int) *Orchestrator {
	return New(opener, Config{
		SuccessThreshold: threshold,
		Review:           ReviewPolicy{AutoClose: true},
	}, zap.NewNop())
}

func TestRun(t *testing.T) {
	sess := &fakeSession{fillOK: map[string]bool{
		"city": true, "service_number": true, "t_number": true, "mobile": true, "email": true,
	}}
	o := newTestOrchestrator(&fakeOpener{sess: sess}, 1)

	res := o.Run(context.Background(), torrentRequest(map[string]string{
		"service_number": "SVC-1",
		"t_number":       "T-1",
		"mobile":         "9876543210",
		"email":          "a@b.c",
	}))

	assert.True(t, res.Success)
	assert.Equal(t, 5, res.FieldsFilled)
	assert.Equal(t, 5, res.TotalFields)
	assert.Equal(t, "100.0%", res.SuccessRate)
	assert.Len(t, res.Outcomes, 5)

	// Fill order follows the provider table.
	assert.Equal(t, []string{"city", "service_number", "t_number", "mobile", "email"}, sess.filled)

	// All three checkpoint screenshots, in lifecycle order.
	assert.Equal(t, []string{"page_loaded.jpg", "form_filled.jpg", "ready_for_review.jpg"}, res.Screenshots)

	assert.True(t, sess.bannerShown)
	assert.True(t, sess.closed, "auto-close review policy closes the session")
	assert.Equal(t, "Ahmedabad", res.SessionData["city"], "defaults land in the audit trail")
}

func TestRun_PartialFailureDoesNotShortCircuit(t *testing.T) {
	sess := &fakeSession{fillOK: map[string]bool{"city": true, "mobile": true}}
	o := newTestOrchestrator(&fakeOpener{sess: sess}, 1)

	res := o.Run(context.Background(), torrentRequest(map[string]string{
		"service_number": "SVC-1",
		"t_number":       "T-1",
		"mobile":         "9876543210",
		"email":          "a@b.c",
	}))

	assert.True(t, res.Success, "threshold 1 tolerates partial fills")
	assert.Equal(t, 2, res.FieldsFilled)
	assert.Len(t, sess.filled, 5, "every field is attempted even after failures")
	assert.Equal(t, "40.0%", res.SuccessRate)
}

func TestRun_SessionOpenFailure(t *testing.T) {
	openErr := errors.New("browser driver unavailable: launch: exec failed")
	o := newTestOrchestrator(&fakeOpener{err: openErr}, 1)

	res := o.Run(context.Background(), torrentRequest(map[string]string{"mobile": "9876543210"}))

	assert.False(t, res.Success)
	assert.Equal(t, openErr.Error(), res.Error)
	assert.Equal(t, 0, res.TotalFields, "no field attempts without a session")
	assert.NotNil(t, res.SessionData, "audit data survives setup failures")
}

func TestRun_NavigationFailureIsNonFatal(t *testing.T) {
	sess := &fakeSession{
		navErr:  errors.New("net::ERR_NAME_NOT_RESOLVED"),
		formErr: browser.ErrDriverUnavailable, // any error, form never appeared
		fillOK:  map[string]bool{},
	}
	o := newTestOrchestrator(&fakeOpener{sess: sess}, 1)

	res := o.Run(context.Background(), torrentRequest(nil))

	assert.False(t, res.Success)
	assert.Len(t, sess.filled, 5, "fill phase still runs; it just finds nothing")
	assert.Empty(t, res.Error, "in-page failures are outcomes, not errors")
}

func TestRun_ScreenshotFailureIsNonFatal(t *testing.T) {
	sess := &fakeSession{
		fillOK:  map[string]bool{"city": true},
		shotErr: errors.New("disk full"),
	}
	o := newTestOrchestrator(&fakeOpener{sess: sess}, 1)

	res := o.Run(context.Background(), torrentRequest(nil))

	assert.True(t, res.Success)
	assert.Empty(t, res.Screenshots)
}

func TestRun_KeepOpenReviewPolicy(t *testing.T) {
	sess := &fakeSession{fillOK: map[string]bool{"city": true}}
	o := newTestOrchestrator(&fakeOpener{sess: sess}, 1)

	req := torrentRequest(nil)
	req.Review = &ReviewPolicy{AutoClose: false}

	o.Run(context.Background(), req)

	assert.False(t, sess.closed, "keep-open leaves the browser for the operator")
}

func TestRun_ProgressCallbacks(t *testing.T) {
	sess := &fakeSession{fillOK: map[string]bool{"city": true, "mobile": true}}
	o := newTestOrchestrator(&fakeOpener{sess: sess}, 1)

	type tick struct {
		field  string
		filled int
	}
	var ticks []tick

	req := torrentRequest(map[string]string{"mobile": "9876543210"})
	req.OnProgress = func(field string, filled, total int) {
		assert.Equal(t, 5, total)
		ticks = append(ticks, tick{field, filled})
	}

	o.Run(context.Background(), req)

	// Two ticks per field: before the attempt and after the outcome.
	require.Len(t, ticks, 10)
	assert.Equal(t, tick{"city", 0}, ticks[0])
	assert.Equal(t, tick{"city", 1}, ticks[1])
	assert.Equal(t, tick{"email", 2}, ticks[9])
}

func TestRun_RecoversFromPanic(t *testing.T) {
	o := newTestOrchestrator(panicOpener{}, 1)

	res := o.Run(context.Background(), torrentRequest(nil))

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "internal automation error")
}

type panicOpener struct{}

func (panicOpener) Open(ctx context.Context, runID string) (Session, error) {
	panic("boom")
}

func TestDefaultReviewPolicy(t *testing.T) {
	p := DefaultReviewPolicy()
	assert.True(t, p.AutoClose)
	assert.Equal(t, 5*time.Second, p.CloseDelay)
}
