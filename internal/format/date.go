// Package format renders raw backend values (ISO dates, amounts) into the
// strings shown to the user.
//
// Every function is pure. Functions that depend on the current date take the
// reference instant as a parameter so callers decide which clock to use:
//
//	format.RelativeDate("2024-03-14", time.Now()) -> "3月14日 昨天"
//	format.Currency(1234567.5, "¥")              -> "¥1,234,567.5"
package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const day = 24 * time.Hour

var (
	relativeSuffix = map[int]string{
		-2: "前天",
		-1: "昨天",
		0:  "今天",
		1:  "明天",
		2:  "后天",
	}

	weekdays = [7]string{"日", "一", "二", "三", "四", "五", "六"}
)

// invalidDateLabel is what an unparseable date renders as. Invalid input is
// not rejected; the label simply carries no usable date.
const invalidDateLabel = "NaN月NaN日 周undefined"

// Layouts without a zone are read in the reference instant's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// parseDate reads an ISO-like date string. A bare "YYYY-MM-DD" is UTC
// midnight, which is what the backend means by a date without a time.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RelativeDate labels isoDate relative to the calendar day of now, e.g.
// "3月14日 昨天" or "3月20日 周三". Days within two of today get a word,
// anything else gets its weekday. Empty input yields "".
func RelativeDate(isoDate string, now time.Time) string {
	if isoDate == "" {
		return ""
	}
	loc := now.Location()
	t, ok := parseDate(isoDate, loc)
	if !ok {
		return invalidDateLabel
	}
	t = t.In(loc)

	delta := int(math.Floor(float64(t.Sub(midnight(now))) / float64(day)))
	prefix := fmt.Sprintf("%d月%d日", int(t.Month()), t.Day())

	if suffix, ok := relativeSuffix[delta]; ok {
		return prefix + " " + suffix
	}
	return prefix + " 周" + weekdays[t.Weekday()]
}

// CurrentYearMonth returns now as "YYYY-MM".
func CurrentYearMonth(now time.Time) string {
	return YearMonth(now.Year(), int(now.Month()))
}

// YearMonth returns "YYYY-MM" with the month zero-padded to two digits.
func YearMonth(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// daysIn uses day zero of the following month, which normalizes to the last
// day of the requested one.
func daysIn(year, month int, loc *time.Location) int {
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, loc).Day()
}

// RemainingDaysInMonth counts the days left in now's month, today included.
func RemainingDaysInMonth(now time.Time) int {
	return daysIn(now.Year(), int(now.Month()), now.Location()) - now.Day() + 1
}

// MonthRange returns "{m}月1日 - {m}月{last}日" for the given month.
func MonthRange(year, month int) string {
	last := daysIn(year, month, time.UTC)
	return fmt.Sprintf("%d月1日 - %d月%d日", month, month, last)
}
