// Package temporal summarizes when incidents happen.
package temporal

import (
	"github.com/jengzang/patroliq-backend-go/internal/models"
)

// PatternForHour labels a peak hour
func PatternForHour(hour int) models.PatternType {
	switch {
	case hour >= 21 || hour <= 2:
		return models.PatternLateNight
	case hour >= 17 && hour < 21:
		return models.PatternEveningRush
	case hour >= 8 && hour < 17:
		return models.PatternDaytime
	default:
		return models.PatternEarlyMorning
	}
}

// PatrolWindow returns the recommended patrol window for a pattern
func PatrolWindow(p models.PatternType) string {
	switch p {
	case models.PatternLateNight:
		return "11 PM - 3 AM"
	case models.PatternEveningRush:
		return "5 PM - 10 PM"
	case models.PatternDaytime:
		return "9 AM - 5 PM"
	case models.PatternEarlyMorning:
		return "4 AM - 8 AM"
	}
	return ""
}

// SeasonForMonth maps a 1-based month to its meteorological season
func SeasonForMonth(month int) string {
	switch month {
	case 12, 1, 2:
		return "Winter"
	case 3, 4, 5:
		return "Spring"
	case 6, 7, 8:
		return "Summer"
	default:
		return "Autumn"
	}
}

// IsWeekend reports whether a Monday-based day index is Saturday or Sunday
func IsWeekend(dayOfWeek int) bool {
	return dayOfWeek >= 5
}
