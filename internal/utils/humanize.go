package utils

import "fmt"

// ConvertSize renders a byte count in the largest unit that keeps the
// value under 1024.
func ConvertSize(num int64) string {
	value := float64(num)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.0f%s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.1f%s", value, "TB")
}
