package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"formrunner/internal/domain/entity"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(entity.RuntimeProfile{})

	assert.False(t, cfg.Headless)
	assert.False(t, cfg.NoSandbox, "Should be secure by default")
	assert.Equal(t, 1920, cfg.WindowWidth)
	assert.Equal(t, 1080, cfg.WindowHeight)
	assert.True(t, cfg.AntiDetection)
	assert.Equal(t, 15*time.Second, cfg.PageLoadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ElementWait)
	assert.Equal(t, "screenshots", cfg.ScreenshotDir)
}

func TestDefaultConfig_Containerized(t *testing.T) {
	cfg := DefaultConfig(entity.RuntimeProfile{Containerized: true})

	assert.True(t, cfg.Headless, "no display in containers")
	assert.True(t, cfg.NoSandbox, "containerized chrome runs as root")
}

func TestHintFor(t *testing.T) {
	cases := []struct {
		err  string
		want string
	}{
		{"open /usr/bin/chromium: permission denied", "file permissions"},
		{"exec: no such file or directory", "not be installed"},
		{"chrome not reachable", "did not come up"},
		{"dial tcp: connection refused", "did not come up"},
		{"context deadline exceeded: timeout", "timed out"},
		{"Running as root without --no-sandbox is not supported", "no-sandbox"},
		{"something entirely else", "misconfigured"},
	}

	for _, c := range cases {
		assert.Contains(t, hintFor(errors.New(c.err)), c.want, c.err)
	}
	assert.Empty(t, hintFor(nil))
}
