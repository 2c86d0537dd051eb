// Package logging provides zerolog construction and context propagation for shepherd.
//
// Loggers travel on the context so every component can log with the caller's
// trace ID without reaching for a global:
//   - NewLogger builds a console or JSON logger writing to stderr or a file
//   - ContextWithLogger / FromContext attach and retrieve the logger
//   - ComponentLogger tags entries with a "component" field
//   - GetOrGenerateTraceID assigns a ULID trace ID that the TraceHook stamps
//     onto every event logged with .Ctx(ctx)
package logging
