package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
)

// FormatPlanResponse renders the outcome of a planning request.
func FormatPlanResponse(r *app.PlanResponse) string {
	var b strings.Builder

	b.WriteString(Header("Plan"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Status:     %s\n", StatusBadge(r.Status))
	fmt.Fprintf(&b, "  Kind:       %s\n", KindBadge(r.Kind))
	fmt.Fprintf(&b, "  Remaining:  %s\n", FormatHours(r.RemainingHours))
	if r.HoursPerDay > 0 {
		fmt.Fprintf(&b, "  Per day:    %s\n", FormatHours(r.HoursPerDay))
	}
	fmt.Fprintf(&b, "  Window:     %s → %s\n", DateOrDash(r.PlannedStart), DateOrDash(r.PlannedEnd))

	if r.Status == app.StatusDecisionRequired && r.Decision != nil {
		b.WriteString("\n")
		b.WriteString(FormatDecision(r.Decision))
		return b.String()
	}

	if len(r.Allocations) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatAllocations(r.Allocations))
		fmt.Fprintf(&b, "  %s %s\n", Dim("Total:"), FormatHours(r.TotalHours()))
	}
	if len(r.ChildAllocations) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatChildAllocations(r.ChildAllocations, nil))
	}
	if r.DistributionError != "" {
		fmt.Fprintf(&b, "\n  %s %s\n", StyleRed.Render("Distribution error:"), r.DistributionError)
	}
	for _, s := range r.Shortfalls {
		fmt.Fprintf(&b, "  %s %s got %s of %s (level %d)\n",
			StyleYellow.Render("Shortfall:"), TruncID(s.TaskID),
			FormatHours(s.AssignedHours), FormatHours(s.DemandHours), s.Level)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  %s %s\n", StyleYellow.Render("WARNING:"), w)
	}
	return b.String()
}

// FormatDecision explains what the caller must supply before re-submitting.
func FormatDecision(d *app.DecisionRequired) string {
	var b strings.Builder
	if d.NeedsStrategy {
		b.WriteString(Bold("  The start day already holds work:"))
		b.WriteString("\n")
		b.WriteString(FormatExisting(d.Conflicts))
		b.WriteString(Dim("  Choose --strategy push_forward or plan_when_available."))
		b.WriteString("\n")
	}
	if d.NeedsHoursPerDay {
		fmt.Fprintf(&b, "  %s %s remaining, %s worked, up to %s per day.\n",
			Bold("Hours per day?"),
			FormatHours(d.RemainingHours), FormatHours(d.WorkedHours), FormatHours(d.DayMaxHours))
		b.WriteString(Dim("  Pass --hours-per-day to cap the daily slices."))
		b.WriteString("\n")
	}
	return b.String()
}

func FormatAllocations(allocs []domain.Allocation) string {
	headers := []string{"Date", "Time", "Hours", "Kind"}
	rows := make([][]string, 0, len(allocs))
	for _, a := range allocs {
		rows = append(rows, []string{
			DayLabel(a.Date),
			Span(a.Start, a.End),
			FormatMinutes(a.Minutes),
			KindBadge(a.Kind),
		})
	}
	return RenderAlignedTable(headers, []Align{AlignLeft, AlignLeft, AlignRight}, rows)
}

// FormatChildAllocations renders distributed child slices. names maps task
// ids to display names; unknown ids fall back to a truncated id.
func FormatChildAllocations(children []domain.ChildAllocation, names map[string]string) string {
	headers := []string{"Date", "Time", "Hours", "Task", "Level"}
	rows := make([][]string, 0, len(children))
	for _, c := range children {
		name, ok := names[c.ChildTaskID]
		if !ok {
			name = TruncID(c.ChildTaskID)
		}
		rows = append(rows, []string{
			DayLabel(c.Date),
			Span(c.Start, c.End),
			FormatMinutes(c.Minutes),
			strings.Repeat("  ", c.Level-1) + name,
			fmt.Sprintf("%d", c.Level),
		})
	}
	return RenderAlignedTable(headers, []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignRight}, rows)
}

// FormatExisting renders the allocations already booked on a day.
func FormatExisting(existing []domain.ExistingAllocation) string {
	if len(existing) == 0 {
		return Dim("  Nothing booked.") + "\n"
	}
	headers := []string{"Task", "Date", "Time", "Hours"}
	rows := make([][]string, 0, len(existing))
	for _, e := range existing {
		rows = append(rows, []string{
			e.TaskName,
			DayLabel(e.Date),
			Span(e.Start, e.End),
			FormatMinutes(e.Minutes),
		})
	}
	return RenderAlignedTable(headers, []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight}, rows)
}

// FormatSchedule renders a task's persisted schedule.
func FormatSchedule(s *app.TaskSchedule, names map[string]string) string {
	var b strings.Builder
	b.WriteString(Header(s.Task.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Planned: %s → %s\n", DateOrDash(s.Task.PlannedStart), DateOrDash(s.Task.PlannedEnd))
	if len(s.Allocations) == 0 && len(s.ChildAllocations) == 0 {
		b.WriteString(Dim("  Not scheduled."))
		b.WriteString("\n")
		return b.String()
	}
	if len(s.Allocations) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatAllocations(s.Allocations))
	}
	if len(s.ChildAllocations) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatChildAllocations(s.ChildAllocations, names))
	}
	return b.String()
}

// FormatAvailability renders residual capacity per day. Non-working days
// are listed dimmed.
func FormatAvailability(days []domain.AvailabilityDay) string {
	headers := []string{"Date", "Window", "Free", "Booked"}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		if d.MaxMinutes == 0 {
			rows = append(rows, []string{Dim(DayLabel(d.Date)), Dim("off"), Dim("0m"), ""})
			continue
		}
		rows = append(rows, []string{
			DayLabel(d.Date),
			Span(d.Start, d.WindowEnd),
			FormatMinutes(d.AvailableMinutes),
			RenderUtilization(d.MaxMinutes-d.AvailableMinutes, d.MaxMinutes, 10),
		})
	}
	return RenderAlignedTable(headers, []Align{AlignLeft, AlignLeft, AlignRight}, rows)
}

// FormatCalendar renders a user's weekly capacity, Monday first.
func FormatCalendar(cal *domain.UserCalendar) string {
	var b strings.Builder
	b.WriteString(Header("Calendar"))
	b.WriteString("\n")
	if cal.HasLunch() {
		fmt.Fprintf(&b, "  Lunch: %s (%s)\n\n", Span(cal.LunchStart, cal.LunchEnd()), FormatMinutes(cal.LunchMinutes))
	} else {
		b.WriteString("  Lunch: " + Dim("none") + "\n\n")
	}

	headers := []string{"Day", "Work", "From", "Hobby", "From"}
	rows := make([][]string, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := time.Weekday(i % 7)
		d := cal.Day(wd)
		rows = append(rows, []string{
			wd.String()[:3],
			hoursOrOff(d.WorkHours),
			d.WorkStart.String(),
			hoursOrOff(d.HobbyHours),
			d.HobbyStart.String(),
		})
	}
	b.WriteString(RenderAlignedTable(headers, []Align{AlignLeft, AlignRight, AlignLeft, AlignRight}, rows))
	fmt.Fprintf(&b, "  %s work %s, hobby %s\n", Dim("Weekly:"),
		FormatMinutes(cal.WeeklyMinutes(domain.KindWork)), FormatMinutes(cal.WeeklyMinutes(domain.KindHobby)))
	return b.String()
}

func hoursOrOff(h float64) string {
	if h <= 0 {
		return Dim("off")
	}
	return FormatHours(h)
}
