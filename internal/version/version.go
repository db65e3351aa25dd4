// Package version reports the projfind build version.
package version

import "runtime/debug"

// Version is the release version, set via -ldflags "-X".
var Version = "dev"

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the ldflags version, or the module version recorded by
// "go install" when the binary was built without ldflags.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	info, ok := readBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}
	return info.Main.Version
}
