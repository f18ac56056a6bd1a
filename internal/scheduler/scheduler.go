// Package scheduler runs repeating jobs keyed by name on top of a single cron runner.
package scheduler

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// repeatingSchedule fires at first and then every period after it.
type repeatingSchedule struct {
	first  time.Time
	period time.Duration
}

func (schedule repeatingSchedule) Next(now time.Time) time.Time {
	if now.Before(schedule.first) {
		return schedule.first
	}
	if schedule.period <= 0 {
		return time.Time{}
	}
	elapsed := now.Sub(schedule.first)
	return schedule.first.Add((elapsed/schedule.period + 1) * schedule.period)
}

type Scheduler struct {
	runner *cron.Cron
	now    func() time.Time

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

func New(location *time.Location) *Scheduler {
	if location == nil {
		location = time.Local
	}

	logger := cron.PrintfLogger(log.New(os.Stdout, "scheduler: ", log.LstdFlags))
	return &Scheduler{
		runner: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		now:  time.Now,
		jobs: make(map[string]cron.EntryID),
	}
}

// Arm replaces any job registered under key with job, first run after firstDelay and then
// every period.
func (scheduler *Scheduler) Arm(key string, firstDelay time.Duration, period time.Duration, job func()) {
	if firstDelay < 0 {
		firstDelay = 0
	}
	schedule := repeatingSchedule{
		first:  scheduler.now().Add(firstDelay),
		period: period,
	}

	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if existing, ok := scheduler.jobs[key]; ok {
		scheduler.runner.Remove(existing)
	}
	scheduler.jobs[key] = scheduler.runner.Schedule(schedule, cron.FuncJob(job))
}

// Cancel removes the job under key and reports whether one was armed.
func (scheduler *Scheduler) Cancel(key string) bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	existing, ok := scheduler.jobs[key]
	if !ok {
		return false
	}
	scheduler.runner.Remove(existing)
	delete(scheduler.jobs, key)
	return true
}

func (scheduler *Scheduler) Active(key string) bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	_, ok := scheduler.jobs[key]
	return ok
}

// NextRun returns the next planned fire time for key, or zero when no job is armed.
func (scheduler *Scheduler) NextRun(key string) time.Time {
	scheduler.mu.Lock()
	existing, ok := scheduler.jobs[key]
	scheduler.mu.Unlock()
	if !ok {
		return time.Time{}
	}

	entry := scheduler.runner.Entry(existing)
	if !entry.Valid() {
		return time.Time{}
	}
	if !entry.Next.IsZero() {
		return entry.Next
	}
	return entry.Schedule.Next(scheduler.now())
}

func (scheduler *Scheduler) Len() int {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return len(scheduler.jobs)
}

func (scheduler *Scheduler) Start() {
	scheduler.runner.Start()
}

// Stop halts the runner; the returned context is done once running jobs have finished.
func (scheduler *Scheduler) Stop() context.Context {
	return scheduler.runner.Stop()
}
