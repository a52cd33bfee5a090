package browser

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// ErrDriverUnavailable is returned when every browser resolution and
// launch strategy has been exhausted. It is the only fatal error class
// the session manager produces.
var ErrDriverUnavailable = errors.New("browser driver unavailable")

// Process-wide cache of a previously resolved browser path. Written at
// most a handful of times on first resolution; a duplicate resolve by
// two concurrent first calls is benign.
var binCache struct {
	mu   sync.Mutex
	path string
}

// resolveBrowserBin walks the resolution cascade:
// explicit configured path, cached path, system install, on-demand
// download. Returns ok=false when nothing resolved, which hands the
// choice back to rod's own automatic resolution at launch time.
func resolveBrowserBin(cfg Config, log *zap.Logger) (string, bool) {
	if cfg.BinaryPath != "" {
		if _, err := os.Stat(cfg.BinaryPath); err == nil {
			cacheBin(cfg.BinaryPath)
			log.Info("using configured browser binary", zap.String("path", cfg.BinaryPath))
			return cfg.BinaryPath, true
		} else {
			log.Warn("configured browser binary not usable",
				zap.String("path", cfg.BinaryPath), zap.Error(err), zap.String("hint", hintFor(err)))
		}
	}

	binCache.mu.Lock()
	cached := binCache.path
	binCache.mu.Unlock()
	if cached != "" {
		if _, err := os.Stat(cached); err == nil {
			log.Debug("using cached browser binary", zap.String("path", cached))
			return cached, true
		}
	}

	if path, has := launcher.LookPath(); has {
		cacheBin(path)
		log.Info("found system browser install", zap.String("path", path))
		return path, true
	}
	log.Warn("no system browser install found, attempting download")

	b := launcher.NewBrowser()
	if cfg.CacheDir != "" {
		b.RootDir = cfg.CacheDir
	}
	if path, err := b.Get(); err == nil {
		cacheBin(path)
		log.Info("browser downloaded", zap.String("path", path))
		return path, true
	} else {
		log.Warn("browser download failed, deferring to automatic resolution",
			zap.Error(err), zap.String("hint", hintFor(err)))
	}

	return "", false
}

func cacheBin(path string) {
	binCache.mu.Lock()
	binCache.path = path
	binCache.mu.Unlock()
}

// hintFor maps launch/resolution error text to an actionable suggestion,
// keyed by substring match.
func hintFor(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"):
		return "check file permissions on the browser binary and cache directory"
	case strings.Contains(msg, "no such file"), strings.Contains(msg, "executable file not found"):
		return "browser binary might not be installed; install Chrome/Chromium or set BROWSER_BIN"
	case strings.Contains(msg, "chrome not reachable"), strings.Contains(msg, "connection refused"):
		return "browser process did not come up; check sandbox flags and available memory"
	case strings.Contains(msg, "timeout"):
		return "browser launch timed out; the host may be overloaded"
	case strings.Contains(msg, "no usable sandbox"), strings.Contains(msg, "sandbox"):
		return "running as root requires no-sandbox mode (set by default in containers)"
	default:
		return "see error detail; browser environment may be misconfigured"
	}
}
