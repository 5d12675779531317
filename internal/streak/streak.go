// Package streak counts consecutive days of learning activity.
package streak

import (
	"time"

	"github.com/abhisek/levelup/internal/xp"
)

// Day truncates t to midnight in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ConsecutiveDays returns the length of the streak of active calendar days
// (in now's location) that ends today, or yesterday if nothing has been
// done yet today. Order and duplicates in days do not matter; timestamps
// after now are ignored.
func ConsecutiveDays(days []time.Time, now time.Time) int {
	loc := now.Location()
	today := Day(now, loc)

	active := make(map[time.Time]bool, len(days))
	for _, d := range days {
		day := Day(d, loc)
		if day.After(today) {
			continue
		}
		active[day] = true
	}

	cursor := today
	if !active[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}

	count := 0
	for active[cursor] {
		count++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return count
}

// ActiveToday reports whether any of days falls on now's calendar day.
func ActiveToday(days []time.Time, now time.Time) bool {
	today := Day(now, now.Location())
	for _, d := range days {
		if Day(d, now.Location()).Equal(today) {
			return true
		}
	}
	return false
}

// NextMilestone returns the next streak length that raises the XP bonus,
// or 0 when the top bonus is already reached.
func NextMilestone(current int) int {
	for _, t := range xp.StreakThresholds {
		if t > current {
			return t
		}
	}
	return 0
}
