package config

import (
	"strconv"
	"time"

	"github.com/hako/durafmt"
)

// Duration is a time.Duration that unmarshals from a plain integer
// (seconds, for backwards compatibility with the Python timeout=60
// convention) or a Go duration string ("60s", "2m").
type Duration struct{ time.Duration }

// NewDuration wraps a time.Duration.
func NewDuration(d time.Duration) Duration {
	return Duration{Duration: d}
}

// Cast returns the underlying time.Duration.
func (c Duration) Cast() time.Duration {
	return c.Duration
}

// String renders the duration in a human-friendly form.
func (c Duration) String() string {
	return durafmt.Parse(c.Cast()).String()
}

// UnmarshalText implements encoding.TextUnmarshaler so it plugs into
// YAML unmarshalling without a bespoke UnmarshalYAML method.
func (c *Duration) UnmarshalText(data []byte) error {
	input := string(data)

	if seconds, err := strconv.Atoi(input); err == nil {
		*c = NewDuration(time.Duration(seconds) * time.Second)

		return nil
	}

	duration, err := time.ParseDuration(input)
	if err != nil {
		return err
	}

	*c = NewDuration(duration)

	return nil
}
