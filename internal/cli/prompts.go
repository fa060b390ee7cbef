package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DecisionPrompter collects the choices a planning request can come back
// asking for.
type DecisionPrompter interface {
	ChooseStrategy(conflicts []domain.ExistingAllocation) (app.Strategy, error)
	HoursPerDay(d *app.DecisionRequired) (float64, error)
}

type huhPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewHuhPrompter returns a DecisionPrompter backed by huh forms on the
// given terminal streams.
func NewHuhPrompter(in io.Reader, out io.Writer) DecisionPrompter {
	return &huhPrompter{in: in, out: out}
}

func planboardHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func (p *huhPrompter) run(form *huh.Form) error {
	return form.
		WithTheme(planboardHuhTheme()).
		WithShowHelp(false).
		WithProgramOptions(tea.WithInput(p.in), tea.WithOutput(p.out)).
		Run()
}

func (p *huhPrompter) ChooseStrategy(conflicts []domain.ExistingAllocation) (app.Strategy, error) {
	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("The start day is already booked").
				Description(conflictSummary(conflicts)).
				Options(
					huh.NewOption("Push existing work forward", string(app.StrategyPushForward)),
					huh.NewOption("Plan in the free time that is left", string(app.StrategyPlanWhenAvailable)),
				).
				Value(&choice),
		),
	)
	if err := p.run(form); err != nil {
		return app.StrategyNone, fmt.Errorf("choosing strategy: %w", err)
	}
	return app.ParseStrategy(choice)
}

func (p *huhPrompter) HoursPerDay(d *app.DecisionRequired) (float64, error) {
	value := strconv.FormatFloat(d.DayMaxHours, 'f', -1, 64)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hours per day").
				Description(fmt.Sprintf("%s remaining, %s already worked, at most %s per day",
					formatter.FormatHours(d.RemainingHours),
					formatter.FormatHours(d.WorkedHours),
					formatter.FormatHours(d.DayMaxHours))).
				Value(&value).
				Validate(func(s string) error {
					_, err := parseHoursPerDay(s, d.DayMaxHours)
					return err
				}),
		),
	)
	if err := p.run(form); err != nil {
		return 0, fmt.Errorf("choosing hours per day: %w", err)
	}
	return parseHoursPerDay(value, d.DayMaxHours)
}

func parseHoursPerDay(s string, dayMax float64) (float64, error) {
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h <= 0 {
		return 0, fmt.Errorf("enter a positive number of hours")
	}
	if dayMax > 0 && h > dayMax {
		return 0, fmt.Errorf("at most %v hours fit in the day", dayMax)
	}
	return h, nil
}

func conflictSummary(conflicts []domain.ExistingAllocation) string {
	s := ""
	for i, c := range conflicts {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %s", c.TaskName, formatter.Span(c.Start, c.End))
	}
	return s
}
