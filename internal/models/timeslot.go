package models

import "fmt"

// Timeslot identifies one cell of the weekly grid by day and period,
// both 1-based small integers. The full set of rows in timeslots.csv
// forms the grid; slots are comparable and usable as map keys.
type Timeslot struct {
	Day    int `json:"day"`
	Period int `json:"period"`
}

// String renders the slot as "(day,period)" for logs and error messages.
func (t Timeslot) String() string {
	return fmt.Sprintf("(%d,%d)", t.Day, t.Period)
}

// Less reports whether t orders before o by (day, period).
func (t Timeslot) Less(o Timeslot) bool {
	if t.Day != o.Day {
		return t.Day < o.Day
	}
	return t.Period < o.Period
}
