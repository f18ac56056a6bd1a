package services

import (
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
)

func OvulationDay(cycleLength int) int {
	return cycleLength - models.LutealPhaseDays
}

// CurrentCycleDay returns the 1-indexed day of the cycle containing now, wrapping modulo the
// cycle length in both directions.
func CurrentCycleDay(now time.Time, profile models.UserProfile) int {
	if profile.CycleLength <= 0 {
		return 0
	}
	elapsed := CalendarDaysBetween(profile.LastPeriodDate, now) % profile.CycleLength
	if elapsed < 0 {
		elapsed += profile.CycleLength
	}
	return elapsed + 1
}

func DaysToNextPeriod(cycleDay int, cycleLength int) int {
	return cycleLength - cycleDay + 1
}

// CalendarDaysBetween counts whole calendar days from the date of from to the date of to, each
// read in its own location. DST shifts never produce fractional days.
func CalendarDaysBetween(from time.Time, to time.Time) int {
	fromYear, fromMonth, fromDay := from.Date()
	toYear, toMonth, toDay := to.Date()
	start := time.Date(fromYear, fromMonth, fromDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear, toMonth, toDay, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// NextDailyFire returns the next occurrence of the clock time at (only hour and minute are used)
// strictly after the time of day of now, in now's location.
func NextDailyFire(now time.Time, at time.Time) time.Time {
	year, month, day := now.Date()
	target := time.Date(year, month, day, at.Hour(), at.Minute(), 0, 0, now.Location())
	if !now.Before(target) {
		target = time.Date(year, month, day+1, at.Hour(), at.Minute(), 0, 0, now.Location())
	}
	return target
}
