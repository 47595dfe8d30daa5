// Package calendar maps the game's day counter onto an in-world date.
// Years are a flat 365 days; day 1 is the first of January of StartYear.
package calendar

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const (
	StartYear      = 2140
	DaysPerYear    = 365
	startDayOfWeek = 1 // day 1 falls on DayNames[1]
)

var (
	DayNames    = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	MonthNames  = [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
	DaysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
)

// Date is a decoded day counter.
type Date struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"` // 1-12
	DayOfMonth int    `json:"day_of_month"`
	Weekday    string `json:"weekday"`
}

// FromDay decodes a 1-based day counter. Values below 1 are treated as 1.
func FromDay(day int) Date {
	if day < 1 {
		day = 1
	}
	doy := DayOfYear(day)
	month := 0
	for i, n := range DaysInMonth {
		if doy < n {
			month = i
			break
		}
		doy -= n
	}
	return Date{
		Year:       Year(day),
		Month:      month + 1,
		DayOfMonth: doy + 1,
		Weekday:    DayNames[(day-1+startDayOfWeek)%7],
	}
}

// String renders e.g. "Monday, January 1st, 2140".
func (d Date) String() string {
	return fmt.Sprintf("%s, %s %s, %d", d.Weekday, MonthNames[d.Month-1], humanize.Ordinal(d.DayOfMonth), d.Year)
}

// DayOfYear returns the 0-based position of day within its year.
func DayOfYear(day int) int {
	return (day - 1) % DaysPerYear
}

// Year returns the calendar year containing day.
func Year(day int) int {
	return StartYear + (day-1)/DaysPerYear
}
