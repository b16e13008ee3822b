package log

import (
	"fmt"
	"strings"
	"time"
)

// ProgressBar represents a progress bar for long-running operations
type ProgressBar struct {
	title     string
	total     int
	current   int
	width     int
	startTime time.Time
	completed bool
	showTime  bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(title string, total int) *ProgressBar {
	return &ProgressBar{
		title:     title,
		total:     total,
		width:     20,
		startTime: time.Now(),
		showTime:  true,
	}
}

// Update updates the progress bar
func (pb *ProgressBar) Update(current int) {
	if quiet {
		return // Don't show progress in quiet mode
	}

	pb.current = current
	pb.render()
}

// Increment increments the progress by 1
func (pb *ProgressBar) Increment() {
	pb.Update(pb.current + 1)
}

// Complete marks the progress as completed
func (pb *ProgressBar) Complete() {
	pb.current = pb.total
	pb.completed = true
	pb.render()
	if !quiet {
		fmt.Println() // New line after completion
	}
}

// render renders the progress bar
func (pb *ProgressBar) render() {
	if quiet || pb.total <= 0 {
		return
	}

	percentage := float64(pb.current) / float64(pb.total) * 100
	filled := int(float64(pb.width) * float64(pb.current) / float64(pb.total))
	if filled > pb.width {
		filled = pb.width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", pb.width-filled)

	timeStr := ""
	if pb.showTime && pb.completed {
		elapsed := time.Since(pb.startTime)
		timeStr = fmt.Sprintf(" (%s)", formatDuration(elapsed))
	}

	status := "100%"
	if !pb.completed {
		status = fmt.Sprintf("%.0f%%", percentage)
	}

	fmt.Printf("\r%s [%s] %s%s", pb.title, bar, status, timeStr)

	if pb.completed {
		fmt.Print(" ✅")
	}
}

// formatDuration formats duration to human readable string
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}

// ProgressInfo shows progress information (only in non-quiet mode)
func ProgressInfo(args ...any) {
	if !quiet {
		Info(args...)
	}
}

// ProgressInfof shows formatted progress information (only in non-quiet mode)
func ProgressInfof(format string, args ...any) {
	if !quiet {
		Infof(format, args...)
	}
}

// QuietInfo shows info only in verbose mode, hidden in quiet mode
func QuietInfo(args ...any) {
	if verbose {
		Info(args...)
	}
}

// QuietInfof shows formatted info only in verbose mode, hidden in quiet mode
func QuietInfof(format string, args ...any) {
	if verbose {
		Infof(format, args...)
	}
}
