package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

const (
	PresetToday     = "today"
	PresetYesterday = "yesterday"
	PresetLast7     = "last7"
	PresetLast30    = "last30"
	PresetThisMonth = "this-month"
	PresetLastMonth = "last-month"
	PresetThisYear  = "this-year"
	PresetCustom    = "custom"
)

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Range is an inclusive span of calendar days. From and To are midnights in
// the same location.
type Range struct {
	From time.Time
	To   time.Time
}

func NewRange(from, to time.Time) Range {
	to = to.In(from.Location())
	return Range{From: StartOfDay(from), To: StartOfDay(to)}
}

func (r Range) Location() *time.Location {
	if r.From.IsZero() {
		return time.Local
	}
	return r.From.Location()
}

func (r Range) FromKey() string {
	return r.From.Format(DayLayout)
}

func (r Range) ToKey() string {
	return r.To.Format(DayLayout)
}

func (r Range) Contains(value time.Time) bool {
	day := StartOfDay(value.In(r.Location()))
	return !day.Before(r.From) && !day.After(r.To)
}

// Days lists every day key in the range, oldest first.
func (r Range) Days() []string {
	days := make([]string, 0, 31)
	for day := r.From; !day.After(r.To); day = day.AddDate(0, 0, 1) {
		days = append(days, day.Format(DayLayout))
	}
	return days
}

func (r Range) String() string {
	if SameDay(r.From, r.To) {
		return r.FromKey()
	}
	return r.FromKey() + ".." + r.ToKey()
}

func SupportedPresets() []string {
	return []string{
		PresetToday,
		PresetYesterday,
		PresetLast7,
		PresetLast30,
		PresetThisMonth,
		PresetLastMonth,
		PresetThisYear,
		PresetCustom,
	}
}

// ParseRange resolves a preset or explicit from/to days relative to now. An
// empty preset with from/to set means custom; nothing set means this month.
func ParseRange(preset, from, to string, now time.Time) (Range, error) {
	preset = strings.ToLower(strings.TrimSpace(preset))
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)

	if preset == "" {
		if from != "" || to != "" {
			preset = PresetCustom
		} else {
			preset = PresetThisMonth
		}
	}

	today := StartOfDay(now)
	switch preset {
	case PresetToday:
		return Range{From: today, To: today}, nil
	case PresetYesterday:
		day := today.AddDate(0, 0, -1)
		return Range{From: day, To: day}, nil
	case PresetLast7:
		return Range{From: today.AddDate(0, 0, -6), To: today}, nil
	case PresetLast30:
		return Range{From: today.AddDate(0, 0, -29), To: today}, nil
	case PresetThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return Range{From: first, To: first.AddDate(0, 1, -1)}, nil
	case PresetLastMonth:
		first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		return Range{From: first, To: first.AddDate(0, 1, -1)}, nil
	case PresetThisYear:
		return Range{
			From: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()),
			To:   time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, today.Location()),
		}, nil
	case PresetCustom:
		if from == "" || to == "" {
			return Range{}, fmt.Errorf("custom range requires both from and to")
		}
		fromDay, err := time.ParseInLocation(DayLayout, from, now.Location())
		if err != nil {
			return Range{}, fmt.Errorf("invalid from date %q (expected YYYY-MM-DD): %w", from, err)
		}
		toDay, err := time.ParseInLocation(DayLayout, to, now.Location())
		if err != nil {
			return Range{}, fmt.Errorf("invalid to date %q (expected YYYY-MM-DD): %w", to, err)
		}
		if fromDay.After(toDay) {
			return Range{}, fmt.Errorf("from %s is after to %s", from, to)
		}
		return Range{From: fromDay, To: toDay}, nil
	default:
		return Range{}, fmt.Errorf("unsupported range %q (supported: %s)", preset, strings.Join(SupportedPresets(), ", "))
	}
}
