package brainwriting

import "time"

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source, used by tests to simulate lock expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}
