package services

import (
	"testing"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
)

func TestPhaseWindowSummaryExamples(t *testing.T) {
	t.Parallel()

	lastPeriod := mustParseDay(t, "2026-02-01")
	cases := []struct {
		name           string
		periodDuration int
		cycleLength    int
		want           PhaseWindows
	}{
		{
			name:           "28 day cycle",
			periodDuration: 5,
			cycleLength:    28,
			want: PhaseWindows{
				Menstrual:  DayRange{From: 1, To: 5},
				Follicular: DayRange{From: 6, To: 12},
				Ovulatory:  DayRange{From: 13, To: 15},
				Luteal:     DayRange{From: 16, To: 28},
			},
		},
		{
			name:           "30 day cycle",
			periodDuration: 5,
			cycleLength:    30,
			want: PhaseWindows{
				Menstrual:  DayRange{From: 1, To: 5},
				Follicular: DayRange{From: 6, To: 14},
				Ovulatory:  DayRange{From: 15, To: 17},
				Luteal:     DayRange{From: 18, To: 30},
			},
		},
		{
			name:           "empty follicular window",
			periodDuration: 7,
			cycleLength:    22,
			want: PhaseWindows{
				Menstrual: DayRange{From: 1, To: 7},
				Ovulatory: DayRange{From: 8, To: 9},
				Luteal:    DayRange{From: 10, To: 22},
			},
		},
	}

	for _, testCase := range cases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			profile := testProfile(1, lastPeriod, testCase.periodDuration, testCase.cycleLength)
			got := PhaseWindowSummary(profile)
			if got != testCase.want {
				t.Fatalf("expected windows %+v, got %+v", testCase.want, got)
			}
			if testCase.want.Follicular == (DayRange{}) && !got.Follicular.Empty() {
				t.Fatalf("expected empty follicular window, got %+v", got.Follicular)
			}
		})
	}
}

func TestClassifyPhaseOvulationDayExample(t *testing.T) {
	t.Parallel()

	profile := testProfile(1, mustParseDay(t, "2026-02-01"), 5, 28)
	if profile.OvulationDay != 14 {
		t.Fatalf("expected ovulation day 14, got %d", profile.OvulationDay)
	}

	expected := map[int]models.Phase{
		1:  models.PhaseMenstrual,
		5:  models.PhaseMenstrual,
		6:  models.PhaseFollicular,
		12: models.PhaseFollicular,
		13: models.PhaseOvulatory,
		14: models.PhaseOvulatory,
		15: models.PhaseOvulatory,
		16: models.PhaseLuteal,
		28: models.PhaseLuteal,
	}
	for day, want := range expected {
		if got := ClassifyPhase(day, profile); got != want {
			t.Fatalf("day %d: expected %s, got %s", day, want, got)
		}
	}
}

func TestPhaseWindowsPartitionCycle(t *testing.T) {
	t.Parallel()

	lastPeriod := mustParseDay(t, "2026-02-01")
	for periodDuration := models.MinPeriodDuration; periodDuration <= models.MaxPeriodDuration; periodDuration++ {
		for cycleLength := models.MinCycleLength; cycleLength <= models.MaxCycleLength; cycleLength++ {
			profile := testProfile(1, lastPeriod, periodDuration, cycleLength)
			windows := PhaseWindowSummary(profile)

			for day := 1; day <= cycleLength; day++ {
				phase := ClassifyPhase(day, profile)
				matches := 0
				for _, candidate := range models.Phases() {
					if windows.For(candidate).Contains(day) {
						matches++
						if candidate != phase {
							t.Fatalf("P=%d L=%d day %d: window %s disagrees with classified %s", periodDuration, cycleLength, day, candidate, phase)
						}
					}
				}
				if matches != 1 {
					t.Fatalf("P=%d L=%d day %d covered by %d windows", periodDuration, cycleLength, day, matches)
				}
			}

			ovulationDay := OvulationDay(cycleLength)
			if ovulationDay-1 <= periodDuration+1 && !windows.Follicular.Empty() {
				t.Fatalf("P=%d L=%d: expected empty follicular window, got %+v", periodDuration, cycleLength, windows.Follicular)
			}
		}
	}
}

func TestDayRange(t *testing.T) {
	t.Parallel()

	if !(DayRange{}).Empty() {
		t.Fatal("zero range must be empty")
	}
	dayRange := DayRange{From: 3, To: 5}
	if dayRange.Empty() || !dayRange.Contains(3) || !dayRange.Contains(5) || dayRange.Contains(6) {
		t.Fatalf("unexpected containment for %+v", dayRange)
	}
}
