package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/charmbracelet/bubbles/progress"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderUtilization renders how much of a day's capacity is booked, like
// [██████░░] 75%. Green while there is room, yellow above two thirds, red
// when the day is full.
func RenderUtilization(usedMinutes, maxMinutes, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 0.0
	if maxMinutes > 0 {
		pct = float64(usedMinutes) / float64(maxMinutes)
	}
	pct = min(max(pct, 0), 1)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct >= 1:
		style = StyleRed
	case pct > 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// StageBar renders planning progress events as a gradient bar followed by
// the stage message.
type StageBar struct {
	bar progress.Model
}

func NewStageBar(width int) *StageBar {
	return &StageBar{
		bar: progress.New(
			progress.WithGradient(string(ColorBlue), string(ColorHeader)),
			progress.WithWidth(width),
		),
	}
}

// Render formats one progress event. Events without a total render as 0%.
func (s *StageBar) Render(ev app.ProgressEvent) string {
	pct := 0.0
	if ev.Total > 0 {
		pct = float64(ev.Step) / float64(ev.Total)
	}
	msg := ev.Message
	if msg == "" {
		msg = strings.ReplaceAll(string(ev.Stage), "_", " ")
	}
	return fmt.Sprintf("%s %s", s.bar.ViewAs(pct), Dim(msg))
}
