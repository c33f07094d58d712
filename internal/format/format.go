package format

import (
	"fmt"
	"time"
)

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Seconds formats a duration as decimal seconds for progress and metadata
// lines. Example: "93.52 seconds"
func Seconds(d time.Duration) string {
	return fmt.Sprintf("%.2f seconds", d.Seconds())
}

// Minutes formats a duration as decimal minutes.
// Example: "12.50 minutes"
func Minutes(d time.Duration) string {
	return fmt.Sprintf("%.2f minutes", d.Minutes())
}

// MB formats a size in bytes as decimal megabytes. Sizes in this
// pipeline are always reported against the 25MB upload limit, so the
// unit stays fixed even for small files.
// Example: "0.48 MB"
func MB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}
