package status

import (
	"fmt"

	"github.com/fatih/color"
)

// FileFormatter defines how per-file outcomes and run progress are formatted
type FileFormatter interface {
	// FormatFileOutcome formats the status line for a single file
	FormatFileOutcome(rec FileRecord) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatSummary formats the end-of-run summary line
	FormatSummary(s Summary) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOutcome formats the per-file status line with a colored symbol
func (f *DefaultFileFormatter) FormatFileOutcome(rec FileRecord) string {
	switch rec.Outcome {
	case OutcomeSuccess:
		return fmt.Sprintf("%s Patched %s",
			color.New(color.FgGreen).Sprint("✓"), rec.Name)
	case OutcomeFailed:
		line := fmt.Sprintf("%s Failed %s",
			color.New(color.FgRed).Sprint("✗"), rec.Name)
		if rec.Err != nil {
			line += color.New(color.Faint).Sprintf(" (%v)", rec.Err)
		}
		return line
	case OutcomeSkipped:
		return fmt.Sprintf("%s Skipped %s",
			color.New(color.FgYellow).Sprint("-"), rec.Name)
	default:
		return fmt.Sprintf("%s %s %s",
			color.New(color.FgCyan).Sprint("•"), rec.Outcome, rec.Name)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatSummary formats the completion line.
// The run completes regardless of how many files failed, so the line always
// leads with "done".
func (f *DefaultFileFormatter) FormatSummary(s Summary) string {
	return fmt.Sprintf("done: %s patched, %s failed, %s skipped (%d attempted)",
		color.New(color.FgGreen).Sprintf("%d", s.Succeeded),
		color.New(color.FgRed).Sprintf("%d", s.Failed),
		color.New(color.FgYellow).Sprintf("%d", s.Skipped),
		s.Attempted)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
