// Package platform reads and writes the generated per-platform MCP server
// configuration files.
//
// A platform's file lives at
//
//	<output_dir>/<platform_dir or name>/<output_filename or config.json>
//
// where output_dir and the platform entry come from the current settings
// document. Reads never fail: a missing or unreadable file yields an empty
// document. Writes create intermediate directories, replace the file
// atomically, and then run the platform's batch command, if any, on a
// detached goroutine. A failing batch command is reported as a
// [notify.BatchError] event and never changes the result of the write.
//
// # Status
//
// [Manager.Status] and [Manager.StatusAll] report whether each declared
// platform has a saved file and whether it parses.
package platform
