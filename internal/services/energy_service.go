package services

import (
	"context"
	"errors"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
)

var ErrNoEnergyData = errors.New("no energy data")

type EnergyStore interface {
	Get(ctx context.Context, userID int64) (models.UserProfile, error)
	AppendEnergyLog(ctx context.Context, userID int64, entry models.EnergyLog) error
	EnergyLogs(ctx context.Context, userID int64) ([]models.EnergyLog, error)
}

type EnergyService struct {
	profiles EnergyStore
}

type EnergyLogResult struct {
	Date        time.Time    `json:"date"`
	CycleDay    int          `json:"cycle_day"`
	Phase       models.Phase `json:"phase"`
	EnergyLevel int          `json:"energy_level"`
}

type PhaseEnergy struct {
	Phase   models.Phase `json:"phase"`
	Count   int          `json:"count"`
	Average float64      `json:"average"`
}

type EnergyStatistics struct {
	Count   int           `json:"count"`
	Average float64       `json:"average"`
	Phases  []PhaseEnergy `json:"phases"`
}

func NewEnergyService(profiles EnergyStore) *EnergyService {
	return &EnergyService{profiles: profiles}
}

func (service *EnergyService) LogEnergy(ctx context.Context, userID int64, level int, now time.Time) (EnergyLogResult, error) {
	if err := ValidateEnergyLevel(level); err != nil {
		return EnergyLogResult{}, err
	}

	profile, err := service.profiles.Get(ctx, userID)
	if err != nil {
		return EnergyLogResult{}, err
	}

	day := CurrentCycleDay(now, profile)
	entry := models.EnergyLog{
		UserID:      userID,
		Date:        DateAtLocation(now, now.Location()),
		CycleDay:    day,
		EnergyLevel: level,
	}
	if err := service.profiles.AppendEnergyLog(ctx, userID, entry); err != nil {
		return EnergyLogResult{}, err
	}

	return EnergyLogResult{
		Date:        entry.Date,
		CycleDay:    day,
		Phase:       ClassifyPhase(day, profile),
		EnergyLevel: level,
	}, nil
}

func (service *EnergyService) Statistics(ctx context.Context, userID int64) (EnergyStatistics, error) {
	profile, err := service.profiles.Get(ctx, userID)
	if err != nil {
		return EnergyStatistics{}, err
	}
	logs, err := service.profiles.EnergyLogs(ctx, userID)
	if err != nil {
		return EnergyStatistics{}, err
	}
	return BuildEnergyStatistics(logs, profile)
}

// BuildEnergyStatistics groups logs by the phase their stored cycle day falls into under the
// current profile parameters.
func BuildEnergyStatistics(logs []models.EnergyLog, profile models.UserProfile) (EnergyStatistics, error) {
	if len(logs) == 0 {
		return EnergyStatistics{}, ErrNoEnergyData
	}

	totals := make(map[models.Phase]int, 4)
	counts := make(map[models.Phase]int, 4)
	total := 0
	for _, entry := range logs {
		phase := ClassifyPhase(entry.CycleDay, profile)
		totals[phase] += entry.EnergyLevel
		counts[phase]++
		total += entry.EnergyLevel
	}

	stats := EnergyStatistics{
		Count:   len(logs),
		Average: float64(total) / float64(len(logs)),
		Phases:  make([]PhaseEnergy, 0, 4),
	}
	for _, phase := range models.Phases() {
		entry := PhaseEnergy{Phase: phase, Count: counts[phase]}
		if entry.Count > 0 {
			entry.Average = float64(totals[phase]) / float64(entry.Count)
		}
		stats.Phases = append(stats.Phases, entry)
	}
	return stats, nil
}
