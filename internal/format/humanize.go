package format

import (
	"fmt"
	"math"
	"time"
)

// Markers for values the upstream did not provide.
const (
	NA      = "N/A"
	Unknown = "unknown"
)

// TimeLayout is used for every rendered timestamp.
const TimeLayout = "2006-01-02 15:04:05"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// Bytes renders a byte count in the largest unit that keeps the value
// below 1024, with two decimals: 1536 -> "1.50 KB".
func Bytes(n Number) string {
	if !n.Valid {
		return NA
	}
	v := n.Value
	unit := 0
	for math.Abs(v) >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}

// Rate renders a bytes-per-second value.
func Rate(n Number) string {
	if !n.Valid {
		return NA
	}
	return Bytes(n) + "/s"
}

// Percent renders a 0-100 percentage with two decimals.
func Percent(n Number) string {
	if !n.Valid {
		return NA
	}
	return fmt.Sprintf("%.2f%%", n.Value)
}

// Fraction renders a 0-1 ratio as a percentage.
func Fraction(n Number) string {
	if !n.Valid {
		return NA
	}
	return Percent(Num(n.Value * 100))
}

// Decimal renders a plain value with two decimals.
func Decimal(n Number) string {
	if !n.Valid {
		return NA
	}
	return fmt.Sprintf("%.2f", n.Value)
}

// Count renders an integral value.
func Count(n Number) string {
	if !n.Valid {
		return NA
	}
	return fmt.Sprintf("%d", int64(n.Value))
}

// Timestamp renders epoch milliseconds in local time.
func Timestamp(n Number) string {
	if !n.Valid || n.Value < 0 || n.Value > math.MaxInt64/2 {
		return NA
	}
	return time.UnixMilli(int64(n.Value)).Local().Format(TimeLayout)
}

// Uptime renders a number of seconds as "3d 4h 5m".
func Uptime(n Number) string {
	if !n.Valid || n.Value < 0 {
		return NA
	}
	total := int64(n.Value)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, total%60)
}
