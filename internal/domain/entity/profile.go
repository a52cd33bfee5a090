package entity

// RuntimeProfile captures the environment the automation runs in.
// Computed once at startup and injected, never re-detected inside the
// automation path. Defaults derived from it are always overridable by
// explicit configuration.
type RuntimeProfile struct {
	Containerized bool
	Hostname      string
}

// DefaultHeadless: containers have no display, desktops get a visible
// browser so the operator can watch the fill.
func (p RuntimeProfile) DefaultHeadless() bool {
	return p.Containerized
}

// DefaultNoSandbox: Chromium's sandbox does not work as root in most
// container images.
func (p RuntimeProfile) DefaultNoSandbox() bool {
	return p.Containerized
}
