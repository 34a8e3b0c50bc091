package trace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConsensusTimestamp is the consensus log's native timestamp format: seconds and
// nanoseconds since the Unix epoch, separated by a dot, e.g. "1712239847.000000001".
type ConsensusTimestamp string

var ErrInvalidTimestamp = errors.New("invalid consensus timestamp")

func NewConsensusTimestamp(t time.Time) ConsensusTimestamp {
	return ConsensusTimestamp(fmt.Sprintf("%d.%09d", t.Unix(), t.Nanosecond()))
}

func (t ConsensusTimestamp) String() string {
	return string(t)
}

func (t ConsensusTimestamp) Time() (time.Time, error) {
	secondsRaw, nanosRaw, found := strings.Cut(string(t), ".")
	if !found {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, t)
	}

	seconds, err := strconv.ParseInt(secondsRaw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, t)
	}

	nanos, err := strconv.ParseInt(nanosRaw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, t)
	}

	return time.Unix(seconds, nanos).UTC(), nil
}
