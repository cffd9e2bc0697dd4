package jwtx

import (
	"strconv"
	"time"
)

// fallbackTTL is what malformed duration strings silently resolve to. The
// reference deployment has always behaved this way, so operators may be
// relying on it; a misconfigured value is indistinguishable from "1h".
const fallbackTTL = time.Hour

// ParseTTL converts a human-readable duration into a time.Duration.
// Accepted forms: bare seconds ("300") or an integer with one unit suffix
// out of s/m/h/d ("15m", "24h", "30d"). Anything else yields one hour.
func ParseTTL(s string) time.Duration {
	if s == "" {
		return fallbackTTL
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return fallbackTTL
		}
		return time.Duration(n) * time.Second
	}

	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return fallbackTTL
	}

	switch unit {
	case 's':
		return time.Duration(n) * time.Second
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	default:
		return fallbackTTL
	}
}
