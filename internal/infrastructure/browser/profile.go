package browser

import (
	"os"
	"sync"

	"formrunner/internal/domain/entity"
)

var (
	profileOnce sync.Once
	profile     entity.RuntimeProfile
)

// DetectProfile inspects the runtime environment once per process.
// Containers are recognized by the Docker sentinel file or a Kubernetes
// service environment.
func DetectProfile() entity.RuntimeProfile {
	profileOnce.Do(func() {
		hostname, _ := os.Hostname()
		profile = entity.RuntimeProfile{
			Containerized: isContainer(),
			Hostname:      hostname,
		}
	})
	return profile
}

func isContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}
	return false
}
