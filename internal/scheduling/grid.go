package scheduling

import "fmt"

// Grid is the canonical set of bookable times for a calendar day. Every
// caller in one deployment must use the same grid: availability is computed
// against it and bookings are validated against it.
type Grid struct {
	StartHour   int // first bookable hour, inclusive
	EndHour     int // first non-bookable hour
	StepMinutes int
}

// DefaultGrid is every half hour from 08:00 up to and including 17:30.
func DefaultGrid() Grid {
	return Grid{StartHour: 8, EndHour: 18, StepMinutes: 30}
}

// Times returns the grid in chronological order, formatted as HH:MM.
func (g Grid) Times() []string {
	var out []string
	for h := g.StartHour; h < g.EndHour; h++ {
		for m := 0; m < 60; m += g.StepMinutes {
			out = append(out, fmt.Sprintf("%02d:%02d", h, m))
		}
	}
	return out
}

// Contains reports whether t is a member of the grid.
func (g Grid) Contains(t string) bool {
	for _, v := range g.Times() {
		if v == t {
			return true
		}
	}
	return false
}
