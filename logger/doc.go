// Package logger provides the structured logging facade used by every go-scales package.
//
// Drivers, the registry and the discovery manager never write to a log sink directly; they log
// through the Logger interface so that a host application can plug in its preferred implementation.
// The bundled implementation is backed by log/slog and emits JSON records, or human friendly
// console records when the ENV environment variable is set to "development".
//
// Log Levels:
//
//   - DebugLevel: frame dumps and handshake steps, typically disabled in production.
//   - InfoLevel: connection lifecycle events.
//   - WarnLevel: recoverable protocol problems such as checksum mismatches.
//   - ErrorLevel: transport failures.
//   - FatalLevel: unrecoverable startup errors in host applications.
package logger
