// Package xtime provides duration display helpers.
package xtime

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration formats a duration into a string with friendly units.
// Returns strings like "10d", "-1w2d", "3Y4M5d", etc.
// Units used: "Y" (365 days), "M" (30 days), "w", "d", "h", "m", "s".
// The round parameter specifies the smallest unit to include.
func FormatDuration(d time.Duration, round time.Duration) string {
	if d == 0 {
		return "0d"
	}

	// Round the duration to the specified precision
	if round > 0 {
		d = d.Round(round)
		if d == 0 {
			return "0d"
		}
	}

	neg := d < 0
	if neg {
		d = -d
	}

	hours := int64(d / time.Hour)

	// Convert to largest units first
	years := hours / (365 * 24)
	hours %= (365 * 24)

	months := hours / (30 * 24)
	hours %= (30 * 24)

	weeks := hours / (7 * 24)
	hours %= (7 * 24)

	days := hours / 24
	hours %= 24

	// Handle remaining time units
	remainder := d % time.Hour
	minutes := remainder / time.Minute
	remainder %= time.Minute
	seconds := remainder / time.Second
	remainder %= time.Second

	var parts []string

	if years > 0 {
		parts = append(parts, fmt.Sprintf("%dY", years))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%dM", months))
	}
	if weeks > 0 {
		parts = append(parts, fmt.Sprintf("%dw", weeks))
	}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 && round <= time.Hour {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 && round <= time.Minute {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 && round <= time.Second {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	if remainder > 0 && round < time.Second {
		if remainder%time.Millisecond == 0 && round <= time.Millisecond {
			parts = append(parts, fmt.Sprintf("%dms", remainder/time.Millisecond))
		} else if remainder%time.Microsecond == 0 && round <= time.Microsecond {
			parts = append(parts, fmt.Sprintf("%dµs", remainder/time.Microsecond))
		} else if round <= time.Nanosecond {
			parts = append(parts, fmt.Sprintf("%dns", remainder/time.Nanosecond))
		}
	}

	// If no parts were added (shouldn't happen with the zero check above)
	if len(parts) == 0 {
		parts = append(parts, "0d")
	}

	result := strings.Join(parts, "")
	if neg {
		result = "-" + result
	}

	return result
}
