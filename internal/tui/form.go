package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/wburn/internal/model"
)

// EventFormValues backs the fields of the log/edit form.
type EventFormValues struct {
	Type   string
	Amount string
	Date   string
}

// NewEventFormValues pre-fills the form from e, or with today's date when e
// is nil.
func NewEventFormValues(e *model.UsageEvent, today time.Time) EventFormValues {
	if e == nil {
		return EventFormValues{
			Type: string(model.ClassPass),
			Date: model.FormatDate(today),
		}
	}
	return EventFormValues{
		Type:   string(e.Type),
		Amount: strconv.Itoa(e.Amount),
		Date:   model.FormatDate(e.Date),
	}
}

// Parse converts the form fields into event values.
func (v EventFormValues) Parse(loc *time.Location) (model.EventType, int, time.Time, error) {
	amount, err := model.ParseAmount(v.Amount)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	date, err := model.ParseDate(v.Date, loc)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	typ, err := model.ParseEventType(v.Type)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	return typ, amount, date, nil
}

// NewEventForm builds the huh form used both by `wburn log -i` and the
// dashboard's new/edit actions.
func NewEventForm(title string, v *EventFormValues) *huh.Form {
	options := make([]huh.Option[string], 0, len(model.EventTypes))
	for _, t := range model.EventTypes {
		options = append(options, huh.NewOption(t.Label()+" ("+t.Unit()+")", string(t)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Activity").
				Options(options...).
				Value(&v.Type),

			huh.NewInput().
				Title("Amount").
				Placeholder("1").
				Value(&v.Amount).
				Validate(func(s string) error {
					_, err := model.ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD").
				Value(&v.Date).
				Validate(func(s string) error {
					_, err := model.ParseDate(s, time.UTC)
					return err
				}),
		).Title(title),
	).WithTheme(huh.ThemeCharm())
}
