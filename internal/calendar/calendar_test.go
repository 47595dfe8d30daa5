package calendar

import "testing"

func TestFromDay(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{1, "Monday, January 1st, 2140"},
		{2, "Tuesday, January 2nd, 2140"},
		{12, "Friday, January 12th, 2140"},
		{32, "Thursday, February 1st, 2140"},
		{59, "Wednesday, February 28th, 2140"},
		{60, "Thursday, March 1st, 2140"},
		{365, "Monday, December 31st, 2140"},
		{366, "Tuesday, January 1st, 2141"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FromDay(tt.day).String(); got != tt.want {
				t.Fatalf("FromDay(%d) = %q, want %q", tt.day, got, tt.want)
			}
		})
	}
}

func TestDayOfYearAndYear(t *testing.T) {
	if DayOfYear(12) != 11 {
		t.Fatalf("DayOfYear(12) = %d", DayOfYear(12))
	}
	if Year(730) != 2141 || Year(731) != 2142 {
		t.Fatalf("Year boundaries wrong: %d %d", Year(730), Year(731))
	}
}

func TestFromDayClampsLow(t *testing.T) {
	if FromDay(0) != FromDay(1) {
		t.Fatal("day 0 should decode as day 1")
	}
}
