// Package version exposes build metadata for the shepherd binary.
package version

// version is set at build time via -ldflags "-X github.com/rshade/shepherd/pkg/version.version=...".
//
//nolint:gochecknoglobals // Overridden by the linker.
var version = "dev"

// GetVersion returns the build version, or "dev" for local builds.
func GetVersion() string {
	if version == "" {
		return "dev"
	}
	return version
}
