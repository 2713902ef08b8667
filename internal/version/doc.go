// Package version exposes build metadata for the reminder binaries.
//
// Version, Commit and BuildTime are injected with -ldflags at build time and
// keep local-build defaults otherwise. Short and Full render them for the CLI
// `version` subcommand and the daemon start-up log line.
package version
