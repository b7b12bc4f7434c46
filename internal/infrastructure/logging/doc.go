// Package logging provides structured logging for the cue light core.
//
// It wraps the standard library's log/slog with configuration-driven format
// and level selection, plus default service/version fields on every record.
// Domain packages do not import this package directly: they accept a small
// Logger interface and a *logging.Logger satisfies it, which keeps them
// testable without any logging set up.
package logging
