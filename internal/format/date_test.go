package format

import (
	"testing"
	"time"
)

var shanghai = time.FixedZone("CST", 8*60*60)

func TestRelativeDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   string
		now  time.Time
		want string
	}{
		{"empty", "", now, ""},
		{"two days ago", "2024-03-13", now, "3月13日 前天"},
		{"yesterday", "2024-03-14", now, "3月14日 昨天"},
		{"today", "2024-03-15", now, "3月15日 今天"},
		{"tomorrow", "2024-03-16", now, "3月16日 明天"},
		{"day after tomorrow", "2024-03-17", now, "3月17日 后天"},
		{"five days ahead is a wednesday", "2024-03-20", now, "3月20日 周三"},
		{"three days ago", "2024-03-12", now, "3月12日 周二"},
		{"sunday", "2024-03-10", now, "3月10日 周日"},
		{"previous month", "2024-02-29", now, "2月29日 周四"},
		{"datetime with zone", "2024-03-14T23:59:59Z", now, "3月14日 昨天"},
		{"local datetime", "2024-03-15 09:00:00", now, "3月15日 今天"},
		{"unparseable", "not a date", now, "NaN月NaN日 周undefined"},
		{"east of utc", "2024-03-14", time.Date(2024, 3, 15, 1, 0, 0, 0, shanghai), "3月14日 昨天"},
		{"east of utc weekday", "2024-03-20", time.Date(2024, 3, 15, 23, 0, 0, 0, shanghai), "3月20日 周三"},
		{"zoned instant shown in local day", "2024-03-14T20:00:00Z", time.Date(2024, 3, 15, 12, 0, 0, 0, shanghai), "3月15日 今天"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RelativeDate(tc.in, tc.now); got != tc.want {
				t.Errorf("RelativeDate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRelativeDateAcrossMidnight(t *testing.T) {
	before := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	after := before.Add(2 * time.Second)

	if got := RelativeDate("2024-03-16", before); got != "3月16日 明天" {
		t.Errorf("before midnight = %q", got)
	}
	if got := RelativeDate("2024-03-16", after); got != "3月16日 今天" {
		t.Errorf("after midnight = %q", got)
	}
}

func TestYearMonth(t *testing.T) {
	cases := []struct {
		year, month int
		want        string
	}{
		{2024, 3, "2024-03"},
		{2024, 12, "2024-12"},
		{999, 1, "999-01"},
	}
	for _, tc := range cases {
		if got := YearMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("YearMonth(%d, %d) = %q, want %q", tc.year, tc.month, got, tc.want)
		}
	}

	if got := CurrentYearMonth(time.Date(2025, 7, 31, 23, 0, 0, 0, time.UTC)); got != "2025-07" {
		t.Errorf("CurrentYearMonth = %q, want 2025-07", got)
	}
}

func TestRemainingDaysInMonth(t *testing.T) {
	cases := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 4, 30, 23, 59, 0, 0, shanghai), 1},
		{time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 17},
	}
	for _, tc := range cases {
		if got := RemainingDaysInMonth(tc.now); got != tc.want {
			t.Errorf("RemainingDaysInMonth(%s) = %d, want %d", tc.now.Format(time.DateOnly), got, tc.want)
		}
	}
}

func TestMonthRange(t *testing.T) {
	cases := []struct {
		year, month int
		want        string
	}{
		{2024, 2, "2月1日 - 2月29日"},
		{2023, 2, "2月1日 - 2月28日"},
		{1900, 2, "2月1日 - 2月28日"},
		{2000, 2, "2月1日 - 2月29日"},
		{2024, 4, "4月1日 - 4月30日"},
		{2024, 12, "12月1日 - 12月31日"},
	}
	for _, tc := range cases {
		if got := MonthRange(tc.year, tc.month); got != tc.want {
			t.Errorf("MonthRange(%d, %d) = %q, want %q", tc.year, tc.month, got, tc.want)
		}
	}
}
