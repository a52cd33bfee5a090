// Package browser owns the controllable browser process: launch
// configuration, binary resolution, navigation, screenshots and
// teardown. One Session is exclusively owned by one orchestration run.
package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"formrunner/internal/domain/entity"
)

// Script injected on every new document when anti-detection is on.
// Suppresses the automation marker the scripting bridge exposes.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

type Config struct {
	Headless      bool
	WindowWidth   int
	WindowHeight  int
	BinaryPath    string // explicit browser binary, empty = resolve
	CacheDir      string // download cache for on-demand browser install
	AntiDetection bool
	NoSandbox     bool
	SlowMotion    time.Duration

	PageLoadTimeout time.Duration
	ElementWait     time.Duration

	ScreenshotDir string
}

// DefaultConfig derives safe defaults from the runtime profile. Every
// field remains overridable by the caller.
func DefaultConfig(profile entity.RuntimeProfile) Config {
	return Config{
		Headless:        profile.DefaultHeadless(),
		NoSandbox:       profile.DefaultNoSandbox(),
		WindowWidth:     1920,
		WindowHeight:    1080,
		AntiDetection:   true,
		PageLoadTimeout: 15 * time.Second,
		ElementWait:     10 * time.Second,
		ScreenshotDir:   "screenshots",
	}
}

type Manager struct {
	cfg Config
	log *zap.Logger
}

func NewManager(cfg Config, log *zap.Logger) *Manager {
	return &Manager{cfg: cfg, log: log}
}

// Session wraps one live browser instance. Never shared across runs.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	cfg      Config
	log      *zap.Logger
	runID    string
	shots    []string
}

// Open launches a browser for one run. Any launch failure is logged with
// a diagnostic hint and surfaced as ErrDriverUnavailable; retrying is the
// caller's decision, not this component's.
func (m *Manager) Open(ctx context.Context, runID string) (*Session, error) {
	log := m.log.With(zap.String("run_id", runID))

	bin, haveBin := resolveBrowserBin(m.cfg, log)

	l := launcher.New().
		Headless(m.cfg.Headless).
		Devtools(false).
		Delete("use-mock-keychain").
		Set("window-size", fmt.Sprintf("%d,%d", m.cfg.WindowWidth, m.cfg.WindowHeight)).
		Set("disable-notifications").
		Set("disable-popup-blocking").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")
	if m.cfg.NoSandbox {
		l = l.NoSandbox(true).Set("disable-setuid-sandbox")
	}
	if haveBin {
		l = l.Bin(bin)
	}

	url, err := l.Launch()
	if err != nil {
		log.Error("browser launch failed", zap.Error(err), zap.String("hint", hintFor(err)))
		return nil, fmt.Errorf("%w: launch: %v", ErrDriverUnavailable, err)
	}

	b := rod.New().ControlURL(url).SlowMotion(m.cfg.SlowMotion).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		log.Error("browser connect failed", zap.Error(err), zap.String("hint", hintFor(err)))
		return nil, fmt.Errorf("%w: connect: %v", ErrDriverUnavailable, err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("%w: open page: %v", ErrDriverUnavailable, err)
	}

	s := &Session{
		browser:  b,
		launcher: l,
		page:     page,
		cfg:      m.cfg,
		log:      log,
		runID:    runID,
	}

	if m.cfg.AntiDetection {
		// Best effort only: an unsupported bridge never fails the open.
		_, err := proto.PageAddScriptToEvaluateOnNewDocument{Source: stealthScript}.Call(page)
		if err != nil {
			log.Warn("anti-detection script injection failed", zap.Error(err))
		}
	}

	log.Info("browser session open",
		zap.Bool("headless", m.cfg.Headless),
		zap.Bool("no_sandbox", m.cfg.NoSandbox),
		zap.Bool("explicit_bin", haveBin))

	return s, nil
}

// Page exposes the underlying page for the locator and filler.
func (s *Session) Page() *rod.Page {
	return s.page
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx).Timeout(s.cfg.PageLoadTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page load: %w", err)
	}
	_ = s.page.WaitIdle(3 * time.Second)
	return nil
}

// WaitFormReady blocks until a form element shows up or the element-wait
// timeout passes. A timeout is the caller's signal to proceed anyway.
func (s *Session) WaitFormReady() error {
	_, err := s.page.Timeout(s.cfg.ElementWait).Element("form")
	return err
}

// Screenshot captures the page as JPEG under a deterministic
// run/label/timestamp name and records the path.
func (s *Session) Screenshot(label string) (string, error) {
	raw, err := s.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() > 1600 {
		img = imaging.Resize(img, 1600, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(s.cfg.ScreenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.jpg", s.runID, label, time.Now().Format("20060102_150405"))
	path := filepath.Join(s.cfg.ScreenshotDir, name)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("jpeg encode failed: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	s.shots = append(s.shots, path)
	s.log.Info("screenshot saved", zap.String("label", label), zap.String("path", path))
	return path, nil
}

// Screenshots lists the paths captured so far, in checkpoint order.
func (s *Session) Screenshots() []string {
	return append([]string(nil), s.shots...)
}

// ShowCompletionBanner renders a temporary on-page notice with the fill
// counts. Cosmetic only.
func (s *Session) ShowCompletionBanner(filled, total int) {
	_, err := s.page.Eval(`(filled, total) => {
		const n = document.createElement('div');
		n.textContent = 'Auto-fill completed: ' + filled + '/' + total + ' fields. Please review and submit the form.';
		n.style.cssText = 'position:fixed;top:20px;right:20px;background:#28a745;color:white;' +
			'padding:20px 30px;border-radius:10px;font-family:Arial,sans-serif;font-size:16px;' +
			'z-index:999999;box-shadow:0 4px 20px rgba(0,0,0,0.3);max-width:400px;';
		document.body.appendChild(n);
		setTimeout(() => n.remove(), 10000);
	}`, filled, total)
	if err != nil {
		s.log.Debug("completion banner failed", zap.Error(err))
	}
}

// Close quits the browser and kills the launched process.
func (s *Session) Close() {
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	s.log.Info("browser session closed")
}
