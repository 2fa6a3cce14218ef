package schedule

import (
	"fmt"
	"strings"

	"serenity/utils"
)

// Window is one bookable block of a day, in minutes from midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// WindowTemplate is the fixed, ordered list of bookable windows. It is
// identical for every therapist and every day; persisted slots and bookings
// are always aligned to it.
type WindowTemplate []Window

// ParseTemplate builds a template from comma-separated "HH:MM-HH:MM" pairs,
// the format used by the SESSION_WINDOWS config value.
func ParseTemplate(spec string) (WindowTemplate, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("empty window template")
	}

	var template WindowTemplate
	for _, pair := range strings.Split(spec, ",") {
		bounds := strings.Split(strings.TrimSpace(pair), "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid window %q, expected HH:MM-HH:MM", pair)
		}
		start, err := utils.ClockToMinutes(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("invalid window start in %q: %w", pair, err)
		}
		end, err := utils.ClockToMinutes(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("invalid window end in %q: %w", pair, err)
		}
		template = append(template, Window{Start: start, End: end})
	}

	if err := template.Validate(); err != nil {
		return nil, err
	}
	return template, nil
}

// Validate enforces the template invariant: every window well-formed,
// sorted ascending by start, no overlaps.
func (t WindowTemplate) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("window template has no windows")
	}
	for i, w := range t {
		if w.Start < 0 || w.End > 24*60 || w.Start >= w.End {
			return fmt.Errorf("window %s-%s is malformed",
				utils.MinutesToClock(w.Start), utils.MinutesToClock(w.End))
		}
		if i > 0 {
			prev := t[i-1]
			if w.Start < prev.Start {
				return fmt.Errorf("windows are not sorted by start time")
			}
			if w.Start < prev.End {
				return fmt.Errorf("window %s-%s overlaps %s-%s",
					utils.MinutesToClock(w.Start), utils.MinutesToClock(w.End),
					utils.MinutesToClock(prev.Start), utils.MinutesToClock(prev.End))
			}
		}
	}
	return nil
}

// Contains reports whether w is one of the template's windows.
func (t WindowTemplate) Contains(w Window) bool {
	for _, tw := range t {
		if tw == w {
			return true
		}
	}
	return false
}
