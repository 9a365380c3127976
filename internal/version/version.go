// Package version exposes the build version injected at link time.
package version

// version is overridden via -ldflags at build time.
var version = "dev"

// Value returns the version the binary was built with.
func Value() string {
	return version
}
