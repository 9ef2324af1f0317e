// Package buildinfo exposes the version stamped at link time:
//
//	go build -ldflags "-X doccheck/internal/platform/buildinfo.Version=1.4.0"
package buildinfo

import "runtime/debug"

// Version is overridden by the linker for release builds.
var Version = "dev"

// Resolve returns Version, or the module version recorded by the Go
// toolchain when the linker did not set one.
func Resolve() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
