package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatMinutes converts raw minutes into a human-friendly duration.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatHours renders decimal hours the way they are typed on the command line.
func FormatHours(h float64) string {
	return FormatMinutes(domain.HoursToMinutes(h))
}

// DayLabel renders a date with its short weekday, e.g. "Mon 2024-03-11".
func DayLabel(t time.Time) string {
	return t.Format("Mon ") + t.Format(domain.DateLayout)
}

// DateOrDash renders an optional date.
func DateOrDash(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return t.Format(domain.DateLayout)
}

// Span renders a clock interval like 09:00-12:00.
func Span(start, end domain.ClockTime) string {
	return start.String() + "-" + end.String()
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}
