package driven

// Logger is the observability sink services write to. It is injected via
// constructors so business logic never talks to a global console directly.
// A nil Logger is valid and means no output.
type Logger interface {
	// Debug records fine-grained pipeline steps.
	Debug(format string, args ...any)

	// Info records notable state changes.
	Info(format string, args ...any)

	// Warn records recoverable problems, such as a skipped document.
	Warn(format string, args ...any)
}
