package respond

import "fmt"

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, ...) for the
// savings log lines.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// SavingsPercent returns the output size as a percentage of the origin size,
// or 100 when the origin size is unknown.
func SavingsPercent(originSize int64, encodedSize int) int64 {
	if originSize <= 0 {
		return 100
	}
	return int64(encodedSize) * 100 / originSize
}
