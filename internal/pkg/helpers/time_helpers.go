package helpers

import (
	"strings"
	"time"

	"github.com/yigit/collegeapi/internal/pkg/logger"
)

// ParseDuration returns fallback when raw is empty, malformed or not positive.
// Token lifetimes come through here so a bad value never yields a zero expiry.
func ParseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Warn().Err(err).Str("value", raw).Dur("fallback", fallback).Msg("Invalid duration, using fallback")
		return fallback
	}
	return d
}
