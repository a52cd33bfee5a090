package filler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formrunner/internal/automation/locator"
	"formrunner/internal/domain/entity"
)

const textFormHTML = `<!DOCTYPE html>
<html>
<body>
	<form>
		<input id="svc" type="text" name="service_no" />
		<input id="mobile" type="tel" name="mobile" />
	</form>
</body>
</html>`

const dropdownHTML = `<!DOCTYPE html>
<html>
<body>
	<form>
		<select id="city" name="city">
			<option value="">-- select --</option>
			<option value="ahd"> Ahmedabad </option>
			<option value="srt">Surat</option>
		</select>
	</form>
</body>
</html>`

const twoSelectsHTML = `<!DOCTYPE html>
<html>
<body>
	<form>
		<select id="first" name="first">
			<option value="ahd">Ahmedabad</option>
		</select>
		<select id="second" name="second">
			<option value="srt">Surat</option>
		</select>
	</form>
</body>
</html>`

// newTestPage serves the given markup and opens it in a headless
// browser owned by the test.
func newTestPage(t *testing.T, markup string) *rod.Page {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(markup))
	}))
	t.Cleanup(server.Close)

	l := launcher.New().Headless(true).NoSandbox(true)
	url, err := l.Launch()
	require.NoError(t, err)

	b := rod.New().ControlURL(url)
	require.NoError(t, b.Connect())
	t.Cleanup(func() {
		_ = b.Close()
		l.Kill()
		l.Cleanup()
	})

	page, err := b.Page(proto.TargetCreateTarget{URL: server.URL})
	require.NoError(t, err)
	require.NoError(t, page.WaitLoad())
	return page
}

func newTestFiller(t *testing.T, cfg Config) *Filler {
	t.Helper()
	return New(locator.New(zap.NewNop()), cfg, zap.NewNop())
}

func elementValue(t *testing.T, page *rod.Page, selector string) string {
	t.Helper()
	el, err := page.Element(selector)
	require.NoError(t, err)
	v, err := el.Property("value")
	require.NoError(t, err)
	return v.Str()
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeDirect, cfg.Mode)
	assert.Equal(t, 50*time.Millisecond, cfg.KeystrokeDelay)
}

func TestNew_CorrectsBadConfig(t *testing.T) {
	f := newTestFiller(t, Config{})

	assert.Equal(t, ModeDirect, f.cfg.Mode)
	assert.Equal(t, 50*time.Millisecond, f.cfg.KeystrokeDelay)

	f = newTestFiller(t, Config{Mode: ModeKeystrokes, KeystrokeDelay: -1})
	assert.Equal(t, ModeKeystrokes, f.cfg.Mode)
	assert.Equal(t, 50*time.Millisecond, f.cfg.KeystrokeDelay)
}

func TestFill_EmptyValue(t *testing.T) {
	f := newTestFiller(t, DefaultConfig())

	// A nil page proves the short circuit never reaches the DOM.
	out := f.Fill(context.Background(), nil, entity.FieldSpec{
		Name:      "email",
		Value:     "",
		Kind:      entity.FieldText,
		Selectors: []string{`input[type="email"]`},
		Critical:  true,
	})

	assert.False(t, out.Succeeded)
	assert.Equal(t, "no value provided", out.ErrorDetail)
	assert.Equal(t, "email", out.FieldName)
	assert.Empty(t, out.AttemptedValue)
	assert.Empty(t, out.StrategyUsed)
	assert.True(t, out.Critical)
}

func TestFill_NoMatchingElement(t *testing.T) {
	page := newTestPage(t, textFormHTML)
	f := newTestFiller(t, DefaultConfig())

	out := f.Fill(context.Background(), page, entity.FieldSpec{
		Name:      "t_number",
		Value:     "T-42",
		Kind:      entity.FieldText,
		ExactID:   "transactionNumber",
		Selectors: []string{`input[name*="transaction"]`},
		Ordinal:   7, // page has fewer generic inputs than that
	})

	assert.False(t, out.Succeeded)
	assert.Equal(t, "no matching element found on page", out.ErrorDetail)
	assert.Equal(t, "T-42", out.AttemptedValue)
}

func TestFill_TextDirect(t *testing.T) {
	page := newTestPage(t, textFormHTML)
	f := newTestFiller(t, DefaultConfig())

	out := f.Fill(context.Background(), page, entity.FieldSpec{
		Name:    "service_number",
		Value:   "SVC-001",
		Kind:    entity.FieldText,
		ExactID: "svc",
	})

	require.True(t, out.Succeeded, out.ErrorDetail)
	assert.Equal(t, entity.StrategyExactID, out.StrategyUsed)
	assert.Equal(t, "SVC-001", elementValue(t, page, "#svc"))
}

func TestFill_TextKeystrokes(t *testing.T) {
	page := newTestPage(t, textFormHTML)
	f := newTestFiller(t, Config{Mode: ModeKeystrokes, KeystrokeDelay: time.Millisecond})

	out := f.Fill(context.Background(), page, entity.FieldSpec{
		Name:      "mobile",
		Value:     "9876543210",
		Kind:      entity.FieldText,
		Selectors: []string{`input[type="tel"]`},
	})

	require.True(t, out.Succeeded, out.ErrorDetail)
	assert.Equal(t, entity.StrategyCSSSelector, out.StrategyUsed)
	assert.Equal(t, "9876543210", elementValue(t, page, "#mobile"))
}

func TestFill_DropdownByVisibleText(t *testing.T) {
	page := newTestPage(t, dropdownHTML)
	f := newTestFiller(t, DefaultConfig())

	// Matching is against the trimmed visible text, not the value.
	out := f.Fill(context.Background(), page, entity.FieldSpec{
		Name:    "city",
		Value:   "Ahmedabad",
		Kind:    entity.FieldDropdown,
		ExactID: "city",
	})

	require.True(t, out.Succeeded, out.ErrorDetail)
	assert.Equal(t, entity.StrategyDropdownText, out.StrategyUsed)
	assert.Equal(t, "ahd", elementValue(t, page, "#city"))
}

func TestFill_DropdownByValue(t *testing.T) {
	page := newTestPage(t, dropdownHTML)
	f := newTestFiller(t, DefaultConfig())

	out := f.Fill(context.Background(), page, entity.FieldSpec{
		Name:    "city",
		Value:   "srt",
		Kind:    entity.FieldDropdown,
		ExactID: "city",
	})

	require.True(t, out.Succeeded, out.ErrorDetail)
	assert.Equal(t, entity.StrategyDropdownValue, out.StrategyUsed)
	assert.Equal(t, "srt", elementValue(t, page, "#city"))
}

func TestFill_DropdownNoSuchOption(t *testing.T) {
	page := newTestPage(t, dropdownHTML)
	f := newTestFiller(t, DefaultConfig())

	out := f.Fill(context.Background(), page, entity.FieldSpec{
		Name:    "city",
		Value:   "Rajkot",
		Kind:    entity.FieldDropdown,
		ExactID: "city",
	})

	assert.False(t, out.Succeeded)
	assert.Contains(t, out.ErrorDetail, "all candidates rejected the write")
	assert.Contains(t, out.ErrorDetail, "no option matches")
}

func TestFill_FallsBackToNextCandidate(t *testing.T) {
	page := newTestPage(t, twoSelectsHTML)
	f := newTestFiller(t, DefaultConfig())

	// The first select in the cascade has no matching option; the write
	// must fall through to the second candidate instead of failing.
	out := f.Fill(context.Background(), page, entity.FieldSpec{
		Name:      "zone",
		Value:     "Surat",
		Kind:      entity.FieldDropdown,
		Selectors: []string{`#first`, `#second`},
	})

	require.True(t, out.Succeeded, out.ErrorDetail)
	assert.Equal(t, entity.StrategyDropdownText, out.StrategyUsed)
	assert.Equal(t, "srt", elementValue(t, page, "#second"))
	assert.Equal(t, "ahd", elementValue(t, page, "#first"), "rejected candidate is left untouched")
}
