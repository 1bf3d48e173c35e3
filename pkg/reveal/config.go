package reveal

import "time"

const (
	// DefaultBaseRate is the calm reveal speed in runes per second.
	DefaultBaseRate = 120.0

	// DefaultBacklogThreshold is the backlog, in runes, above which the
	// reveal speeds up.
	DefaultBacklogThreshold = 80

	// DefaultMaxBoost caps the speed-up as a multiple of the base rate.
	DefaultMaxBoost = 8.0

	// DefaultFrameInterval is the tick period.
	DefaultFrameInterval = 16 * time.Millisecond
)

// Config tunes the reveal rate.
type Config struct {
	// BaseRate is the reveal speed in runes per second while the backlog is
	// at or below BacklogThreshold.
	BaseRate float64

	// BacklogThreshold is the backlog in runes at which the rate starts to
	// scale with the backlog.
	BacklogThreshold int

	// MaxBoost caps the scaled rate at BaseRate*MaxBoost.
	MaxBoost float64

	// FrameInterval is the delay requested between ticks.
	FrameInterval time.Duration
}

// DefaultConfig returns the default reveal configuration.
func DefaultConfig() Config {
	return Config{
		BaseRate:         DefaultBaseRate,
		BacklogThreshold: DefaultBacklogThreshold,
		MaxBoost:         DefaultMaxBoost,
		FrameInterval:    DefaultFrameInterval,
	}
}

// withDefaults fills zero or negative fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseRate <= 0 {
		c.BaseRate = d.BaseRate
	}
	if c.BacklogThreshold <= 0 {
		c.BacklogThreshold = d.BacklogThreshold
	}
	if c.MaxBoost < 1 {
		c.MaxBoost = d.MaxBoost
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	return c
}

// rate returns the reveal speed in runes per second for a backlog.
func (c Config) rate(backlog int) float64 {
	if backlog <= c.BacklogThreshold {
		return c.BaseRate
	}
	boost := float64(backlog) / float64(c.BacklogThreshold)
	if boost > c.MaxBoost {
		boost = c.MaxBoost
	}
	return c.BaseRate * boost
}

// maxFrameGap bounds the elapsed time credited to a single tick so a host
// that stalls (a suspended terminal, a slow frame) does not dump the whole
// backlog at once.
func (c Config) maxFrameGap() time.Duration {
	return 4 * c.FrameInterval
}
