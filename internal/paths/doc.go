// Package paths resolves the file locations mcpsel works with.
//
// The registry location follows a fixed priority chain, see
// [ResolveRegistryPath]. Every resolver returns a cleaned absolute path and
// never fails; relative inputs are anchored at the working directory that
// the caller passes in, which keeps resolution independent of the process
// state in tests.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for the application config
// directory that holds mcpsel.yaml (see [AppConfigDir]).
package paths
