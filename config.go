package netsniff

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the Sniffer's construction-time defaults. Runtime
// prerequisites (the attached device, the report file, the interval) are
// set afterwards through the Facade's Attach/SetFile/SetInterval calls per
// §4.7; of those, Config only seeds the interval's default (alongside the
// logger), the same split the teacher uses
// between its pcap.Options (construction-time tuning) and its per-call
// With* overrides.
type Config struct {
	interval time.Duration
	log      *logrus.Logger
}

func newConfig() Config {
	return Config{
		log: logrus.StandardLogger(),
	}
}

// Option configures a Sniffer at construction time.
type Option func(*Config)

// WithInterval sets the default periodic-report interval. A Sniffer built
// with this can still call SetInterval later to change it; 0 (the zero
// value) means "on demand only", matching §4.7's SnifferConfig.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.interval = d
	}
}

// WithLogger overrides the logger the Sniffer and its worker tasks log
// through. Defaults to logrus's standard logger.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Config) {
		c.log = log
	}
}
