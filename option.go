package jwtsecurity

import "time"

// Option configures the Chain.
// Returns error for validation failures.
type Option func(*Chain) error

// WithLogger sets an optional logger for the stages.
//
// The logger interface is compatible with log/slog.Logger and similar loggers;
// NewLogrusLogger adapts logrus.
func WithLogger(logger Logger) Option {
	return func(ch *Chain) error {
		if logger == nil {
			return ErrLoggerNil
		}
		ch.logger = logger
		return nil
	}
}

// WithTokenExtractor sets the function the validator stage reads tokens
// with.
//
// Default: HeaderTokenExtractor with the configured header name and prefix
func WithTokenExtractor(e TokenExtractor) Option {
	return func(ch *Chain) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		ch.tokenExtractor = e
		return nil
	}
}

// WithTokenWriter sets the function the generator stage writes tokens with.
//
// Default: DefaultTokenWriter with the configured header names and prefix
func WithTokenWriter(tw TokenWriter) Option {
	return func(ch *Chain) error {
		if tw == nil {
			return ErrTokenWriterNil
		}
		ch.tokenWriter = tw
		return nil
	}
}

// WithProblemWriter sets how the exception stage renders problems.
//
// Default: JSONProblemWriter, or PlainProblemWriter when the exception stage
// is disabled
func WithProblemWriter(pw ProblemWriter) Option {
	return func(ch *Chain) error {
		if pw == nil {
			return ErrProblemWriterNil
		}
		ch.problemWriter = pw
		return nil
	}
}

// WithClock sets the clock used to timestamp problems.
func WithClock(now func() time.Time) Option {
	return func(ch *Chain) error {
		if now == nil {
			return ErrClockNil
		}
		ch.now = now
		return nil
	}
}
