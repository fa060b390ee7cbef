package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusBadge returns a colored indicator for a planning outcome.
func StatusBadge(status app.PlanStatus) string {
	switch status {
	case app.StatusPlanned:
		return StyleGreen.Render("● PLANNED")
	case app.StatusPushedForward:
		return StyleBlue.Render("» PUSHED FORWARD")
	case app.StatusDecisionRequired:
		return StyleYellow.Render("? DECISION REQUIRED")
	case app.StatusDistributionFailed:
		return StyleRed.Render("▲ DISTRIBUTION FAILED")
	default:
		return StyleDim.Render(string(status))
	}
}

// KindBadge labels an allocation kind; hobby time is purple.
func KindBadge(kind domain.Kind) string {
	if kind == domain.KindHobby {
		return StylePurple.Render("hobby")
	}
	return StyleBlue.Render("work")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
