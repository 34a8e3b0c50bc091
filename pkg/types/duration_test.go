package types

import (
	"encoding/json"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		input    string
		expected time.Duration
	}{
		{"500ms", time.Millisecond * 500},
		{"30s", time.Second * 30},
		{"10m", time.Minute * 10},
		{"2h", time.Hour * 2},
		{"1d", time.Hour * 24},
		{"2d 12h", time.Hour * 60},
		{"1h 30m 15s", time.Hour + time.Minute*30 + time.Second*15},
		{"0", 0},
	}

	for _, tc := range cases {
		var d MarshalledDuration
		require.NoError(t, d.UnmarshalText([]byte(tc.input)), tc.input)
		require.Equal(t, tc.expected, d.Duration(), tc.input)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, input := range []string{"abc", "5x", "ms500", "-5s"} {
		var d MarshalledDuration
		require.Error(t, d.UnmarshalText([]byte(input)), input)
	}
}

func TestDurationJSONRoundTrip(t *testing.T) {
	var d MarshalledDuration
	require.NoError(t, json.Unmarshal([]byte(`"1h 30m"`), &d))
	require.Equal(t, time.Hour+time.Minute*30, d.Duration())

	encoded, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"1h30m0s"`, string(encoded))
}

func TestDurationJSONRequiresQuotes(t *testing.T) {
	var d MarshalledDuration
	require.Error(t, json.Unmarshal([]byte(`1500`), &d))
}
