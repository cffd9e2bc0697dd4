package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Duration
	}{
		{"300", 300 * time.Second},
		{"0", 0},
		{"45s", 45 * time.Second},
		{"15m", 15 * time.Minute},
		{"24h", 24 * time.Hour},
		{"30d", 30 * 24 * time.Hour},

		// malformed inputs silently fall back to one hour
		{"", time.Hour},
		{"soon", time.Hour},
		{"15 m", time.Hour},
		{"1.5h", time.Hour},
		{"-5m", time.Hour},
		{"10w", time.Hour},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, ParseTTL(tc.in), "ParseTTL(%q)", tc.in)
	}
}
