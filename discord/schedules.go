package discord

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// BotScheduleI defines the interface for recurring background tasks.
type BotScheduleI interface {
	GetName() string
	// GetCronExpression returns the standard 5-field cron expression for
	// when this schedule should run.
	GetCronExpression() string
	// Execute runs the task. Failures are logged by the manager; nothing is
	// surfaced to users.
	Execute() error
}

// GenericBotSchedule is a plain implementation of BotScheduleI.
type GenericBotSchedule struct {
	Name           string
	CronExpression string
	Handler        func() error
}

func (bs *GenericBotSchedule) GetName() string           { return bs.Name }
func (bs *GenericBotSchedule) GetCronExpression() string { return bs.CronExpression }
func (bs *GenericBotSchedule) Execute() error            { return bs.Handler() }

// NewBotSchedule creates a scheduled task with the given name, cron
// expression, and handler.
func NewBotSchedule(name, cronExpr string, handler func() error) BotScheduleI {
	return &GenericBotSchedule{
		Name:           name,
		CronExpression: cronExpr,
		Handler:        handler,
	}
}

// scheduleManager runs registered schedules on their cron expressions.
type scheduleManager struct {
	cron      *cron.Cron
	schedules []BotScheduleI
}

func newScheduleManager(schedules []BotScheduleI) *scheduleManager {
	return &scheduleManager{
		cron:      cron.New(),
		schedules: schedules,
	}
}

func (sm *scheduleManager) start() error {
	for _, schedule := range sm.schedules {
		sched := schedule
		_, err := sm.cron.AddFunc(sched.GetCronExpression(), func() {
			slog.Debug("executing schedule", "name", sched.GetName())
			if err := sched.Execute(); err != nil {
				slog.Error("schedule failed", "name", sched.GetName(), "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to add schedule %s: %w", sched.GetName(), err)
		}
		slog.Info("registered schedule", "name", sched.GetName(), "cron", sched.GetCronExpression())
	}

	sm.cron.Start()
	return nil
}

func (sm *scheduleManager) stop() {
	sm.cron.Stop()
	slog.Info("schedule manager stopped")
}
