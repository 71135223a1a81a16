package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chatwork-bot/internal/storage"
)

// ErrInvalidDate is returned for date arguments outside the accepted yyyy-mm-dd, mm-dd and dd forms.
var ErrInvalidDate = errors.New("invalid date")

const wildcard = "*"

// ParseSpec turns a user supplied date into its stored form:
// "2024-3-5" -> "2024/03/05", "3-5" -> "03/05" (every year), "5" -> "05" (every month).
func ParseSpec(s string) (string, error) {
	parts := strings.Split(s, "-")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}
	switch len(nums) {
	case 3:
		return fmt.Sprintf("%04d/%02d/%02d", nums[0], nums[1], nums[2]), nil
	case 2:
		return fmt.Sprintf("%02d/%02d", nums[0], nums[1]), nil
	case 1:
		return fmt.Sprintf("%02d", nums[0]), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Keys are the three granularities a stored spec can match on a given day.
type Keys struct {
	Full    string // YYYY/MM/DD
	Yearly  string // MM/DD
	Monthly string // DD
}

func TodayKeys(t time.Time) Keys {
	return Keys{
		Full:    t.Format("2006/01/02"),
		Yearly:  t.Format("01/02"),
		Monthly: t.Format("02"),
	}
}

// Match reports whether a stored spec falls on the day of k. Legacy specs with a leading
// wildcard or dash separators are normalized first.
func (k Keys) Match(spec string) bool {
	s := strings.ReplaceAll(strings.TrimPrefix(spec, wildcard), "-", "/")
	return s == k.Full || s == k.Yearly || s == k.Monthly
}

// Display strips the wildcard marker from recurring specs for listing.
func Display(spec string) string {
	parts := strings.Split(spec, "-")
	switch {
	case len(parts) == 2 && parts[0] == wildcard:
		return parts[1]
	case len(parts) == 1 && strings.HasPrefix(parts[0], wildcard):
		return strings.TrimPrefix(parts[0], wildcard)
	}
	return spec
}

// LongDate renders t as 2006年01月02日.
func LongDate(t time.Time) string { return t.Format("2006年01月02日") }

// DateOnly is the per-day key used to remember greetings.
func DateOnly(t time.Time) string { return t.Format(time.DateOnly) }

// Filter keeps the entries that fall on the day of k, in their original order.
func (k Keys) Filter(entries []storage.CalendarEntry) []storage.CalendarEntry {
	var out []storage.CalendarEntry
	for _, e := range entries {
		if k.Match(e.DateSpec) {
			out = append(out, e)
		}
	}
	return out
}
