package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// MarshalledDuration is a time.Duration that can be unmarshalled from config files and
// environment variables using a human-readable format, e.g. "2d 12h" or "500ms".
type MarshalledDuration time.Duration

var durationRegex = regexp.MustCompile(`^(?:(\d+)d)? ?(?:(\d+)h)? ?(?:(\d+)m)? ?(?:(\d+)s)? ?(?:(\d+)ms)?$`)

func (d MarshalledDuration) Duration() time.Duration {
	return time.Duration(d)
}

func (d MarshalledDuration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

func (d *MarshalledDuration) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("invalid duration: missing quotes")
	}

	return d.UnmarshalText(data[1 : len(data)-1])
}

func (d *MarshalledDuration) UnmarshalText(text []byte) error {
	duration, err := parseDuration(string(text))
	if err != nil {
		return err
	}

	*d = MarshalledDuration(duration)
	return nil
}

// parseDuration: Go's native time.ParseDuration function does not support days.
func parseDuration(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}

	groups := durationRegex.FindStringSubmatch(s)
	if len(groups) != 6 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}

	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second, time.Millisecond}

	var duration time.Duration
	for i, unit := range units {
		if groups[i+1] == "" {
			continue
		}

		n, err := strconv.Atoi(groups[i+1])
		if err != nil {
			return 0, err
		}

		duration += time.Duration(n) * unit
	}

	return duration, nil
}
