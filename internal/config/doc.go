// Package config provides configuration management for the mcpsel CLI.
//
// This package handles mcpsel's own preferences. It is distinct from the
// settings document (settings.json) and the tool registry (database.json),
// which are watched and reloaded by the store.
//
// # Configuration File
//
// Preferences are read from mcpsel.yaml in the working directory, then
// from $XDG_CONFIG_HOME/mcpsel/mcpsel.yaml:
//
//	version: 1
//	settings_file: settings.json
//	database_file: database.json
//	watch:
//	  interval: 1s
//	  backend: poll   # poll, native or auto
//	shell: ""         # empty selects sh -c or cmd /C
//
// Every key can be overridden from the environment with the MCPSEL_ prefix,
// dots replaced by underscores, e.g. MCPSEL_WATCH_BACKEND=native.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// Load validates the result; see [Validate].
package config
