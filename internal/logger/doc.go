// Package logger wraps a zap sugared logger for the reminder binaries:
//   - a global logger with a console encoder and an atomic level,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for CLI flags and settings,
//   - context-aware shortcuts (Info, InfoKV, Warnf, ...).
//
// Components take a context and log through the logger stored in it, so the
// scheduler, capability adapters and transports share scoped fields.
package logger
