package services

import "github.com/terraincognita07/ovumcy-bot/internal/models"

// ClassifyPhase applies the ordered phase rules; the first matching rule wins. The ovulatory
// window is checked before the follicular one, so the follicular window is empty whenever the
// period reaches the day before the ovulatory window.
func ClassifyPhase(day int, profile models.UserProfile) models.Phase {
	ovulationDay := profileOvulationDay(profile)
	switch {
	case day >= 1 && day <= profile.PeriodDuration:
		return models.PhaseMenstrual
	case day >= ovulationDay-1 && day <= ovulationDay+1:
		return models.PhaseOvulatory
	case day > profile.PeriodDuration && day < ovulationDay-1:
		return models.PhaseFollicular
	default:
		return models.PhaseLuteal
	}
}

func profileOvulationDay(profile models.UserProfile) int {
	if profile.OvulationDay > 0 {
		return profile.OvulationDay
	}
	return OvulationDay(profile.CycleLength)
}

type DayRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (dayRange DayRange) Empty() bool {
	return dayRange.From == 0 || dayRange.To < dayRange.From
}

func (dayRange DayRange) Contains(day int) bool {
	return !dayRange.Empty() && day >= dayRange.From && day <= dayRange.To
}

type PhaseWindows struct {
	Menstrual  DayRange `json:"menstrual"`
	Follicular DayRange `json:"follicular"`
	Ovulatory  DayRange `json:"ovulatory"`
	Luteal     DayRange `json:"luteal"`
}

func (windows PhaseWindows) For(phase models.Phase) DayRange {
	switch phase {
	case models.PhaseMenstrual:
		return windows.Menstrual
	case models.PhaseFollicular:
		return windows.Follicular
	case models.PhaseOvulatory:
		return windows.Ovulatory
	default:
		return windows.Luteal
	}
}

// PhaseWindowSummary derives the day range of each phase by classifying every day of the cycle,
// so the summary never disagrees with ClassifyPhase. A phase with no days gets a zero range.
func PhaseWindowSummary(profile models.UserProfile) PhaseWindows {
	ranges := make(map[models.Phase]DayRange, 4)
	for day := 1; day <= profile.CycleLength; day++ {
		phase := ClassifyPhase(day, profile)
		current, seen := ranges[phase]
		if !seen {
			current.From = day
		}
		current.To = day
		ranges[phase] = current
	}

	return PhaseWindows{
		Menstrual:  ranges[models.PhaseMenstrual],
		Follicular: ranges[models.PhaseFollicular],
		Ovulatory:  ranges[models.PhaseOvulatory],
		Luteal:     ranges[models.PhaseLuteal],
	}
}
