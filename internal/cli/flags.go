package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*kindValue)(nil)
	_ pflag.Value = (*strategyValue)(nil)
	_ pflag.Value = (*dateValue)(nil)
	_ pflag.Value = (*clockValue)(nil)
	_ pflag.Value = (*hoursValue)(nil)
)

type kindValue struct{ kind *domain.Kind }

func newKindValue(def domain.Kind, p *domain.Kind) *kindValue {
	*p = def
	return &kindValue{kind: p}
}

func (v *kindValue) String() string { return string(*v.kind) }
func (v *kindValue) Type() string   { return "kind" }

func (v *kindValue) Set(s string) error {
	k, err := domain.ParseKind(s)
	if err != nil {
		return err
	}
	*v.kind = k
	return nil
}

type strategyValue struct{ strategy *app.Strategy }

func (v *strategyValue) String() string { return string(*v.strategy) }
func (v *strategyValue) Type() string   { return "strategy" }

func (v *strategyValue) Set(s string) error {
	st, err := app.ParseStrategy(s)
	if err != nil {
		return err
	}
	*v.strategy = st
	return nil
}

// dateValue parses YYYY-MM-DD. An unset flag keeps the zero time.
type dateValue struct{ date *time.Time }

func (v *dateValue) String() string {
	if v.date == nil || v.date.IsZero() {
		return ""
	}
	return v.date.Format(domain.DateLayout)
}

func (v *dateValue) Type() string { return "date" }

func (v *dateValue) Set(s string) error {
	t, err := domain.ParseDate(s)
	if err != nil {
		return err
	}
	*v.date = t
	return nil
}

type clockValue struct{ clock *domain.ClockTime }

func (v *clockValue) String() string { return v.clock.String() }
func (v *clockValue) Type() string   { return "HH:MM" }

func (v *clockValue) Set(s string) error {
	c, err := domain.ParseClock(s)
	if err != nil {
		return err
	}
	*v.clock = c
	return nil
}

// hoursValue is an optional positive decimal; nil until the flag is given.
type hoursValue struct{ hours **float64 }

func (v *hoursValue) String() string {
	if *v.hours == nil {
		return ""
	}
	return strconv.FormatFloat(**v.hours, 'f', -1, 64)
}

func (v *hoursValue) Type() string { return "hours" }

func (v *hoursValue) Set(s string) error {
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h <= 0 {
		return fmt.Errorf("expected positive hours, got %q", s)
	}
	*v.hours = &h
	return nil
}

func today() time.Time {
	return domain.DateOf(time.Now())
}
