/*
scheduler.go - Cron-driven payment reminder scheduler

PURPOSE:
  Periodically checks which recurring expenses come due within the reminder
  window and whether today is payday, and hands each finding to a Notify
  hook. The default hook writes a structured log line; delivery channels
  (push, email) plug in through the same hook.

DESIGN:
  - robfig/cron runs the check on a cron expression (default daily 08:00)
  - Each (expense, due date) pair is reported once, even if the window
    covers it on several consecutive runs; pairs whose due date has passed
    are forgotten
  - The clock is injected so tests can pin "today"

CONFIGURATION:
  - Schedule:   cron expression, 5 fields (reminders.schedule)
  - WindowDays: how far ahead to look (reminders.window_days)
  - Enabled:    whether the scheduler runs at all (reminders.enabled)

USAGE:
  scheduler := NewReminderScheduler(store, logger)
  scheduler.Schedule = cfg.Reminders.Schedule
  err := scheduler.Run(ctx) // blocks until ctx is done

SEE ALSO:
  - handlers.go: GetReminders endpoint (on-demand check)
  - finance/reminders.go: UpcomingPayments, IsPayday
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// DefaultReminderSchedule runs the check every day at 08:00.
const DefaultReminderSchedule = "0 8 * * *"

// ReminderReport is the outcome of one scheduler check.
type ReminderReport struct {
	Today    generic.Date
	IsPayday bool
	Upcoming []finance.UpcomingPayment // only payments not reported before
}

// ReminderScheduler runs reminder checks on a cron schedule.
type ReminderScheduler struct {
	Store      finance.Store
	Logger     *logrus.Logger
	Schedule   string
	WindowDays int
	Enabled    bool
	Now        func() time.Time
	Notify     func(ReminderReport)

	mu       sync.Mutex
	notified map[string]generic.Date // key -> due date
	last     *ReminderReport
}

// NewReminderScheduler creates a new scheduler that logs its findings.
func NewReminderScheduler(store finance.Store, logger *logrus.Logger) *ReminderScheduler {
	rs := &ReminderScheduler{
		Store:      store,
		Logger:     logger,
		Schedule:   DefaultReminderSchedule,
		WindowDays: finance.DefaultReminderWindow,
		Enabled:    true,
		Now:        time.Now,
		notified:   make(map[string]generic.Date),
	}
	rs.Notify = rs.logReport
	return rs
}

// Run starts the cron loop and blocks until ctx is cancelled. It runs one
// check immediately on start.
func (rs *ReminderScheduler) Run(ctx context.Context) error {
	if !rs.Enabled {
		rs.Logger.Info("reminder scheduler disabled, not starting")
		<-ctx.Done()
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(rs.Schedule, func() { rs.check(ctx) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", rs.Schedule, err)
	}

	rs.check(ctx)
	c.Start()
	rs.Logger.WithFields(logrus.Fields{
		"schedule":    rs.Schedule,
		"window_days": rs.WindowDays,
	}).Info("reminder scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	rs.Logger.Info("reminder scheduler stopped")
	return nil
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *ReminderScheduler) RunNow(ctx context.Context) (ReminderReport, error) {
	return rs.runCheck(ctx)
}

// LastReport returns the most recent check, or nil before the first run.
func (rs *ReminderScheduler) LastReport() *ReminderReport {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.last == nil {
		return nil
	}
	r := *rs.last
	return &r
}

func (rs *ReminderScheduler) check(ctx context.Context) {
	if _, err := rs.runCheck(ctx); err != nil {
		rs.Logger.WithError(err).Error("reminder check failed")
	}
}

func (rs *ReminderScheduler) runCheck(ctx context.Context) (ReminderReport, error) {
	today := generic.DateOf(rs.Now())

	expenses, err := rs.Store.RecurringExpenses(ctx)
	if err != nil {
		return ReminderReport{}, fmt.Errorf("load recurring expenses: %w", err)
	}
	salary, err := rs.Store.Salary(ctx)
	if err != nil {
		return ReminderReport{}, fmt.Errorf("load salary: %w", err)
	}

	upcoming, err := finance.UpcomingPayments(expenses, today, rs.WindowDays)
	if err != nil {
		return ReminderReport{}, err
	}
	payday, err := finance.IsPayday(salary, today)
	if err != nil {
		return ReminderReport{}, err
	}

	rs.mu.Lock()
	for key, due := range rs.notified {
		if due.Before(today) {
			delete(rs.notified, key)
		}
	}
	report := ReminderReport{Today: today, IsPayday: payday}
	for _, p := range upcoming {
		key := string(p.Expense.ID) + "@" + p.DueDate.String()
		if _, seen := rs.notified[key]; seen {
			continue
		}
		rs.notified[key] = p.DueDate
		report.Upcoming = append(report.Upcoming, p)
	}
	rs.last = &report
	rs.mu.Unlock()

	if rs.Notify != nil && (report.IsPayday || len(report.Upcoming) > 0) {
		rs.Notify(report)
	}
	return report, nil
}

func (rs *ReminderScheduler) logReport(report ReminderReport) {
	if report.IsPayday {
		rs.Logger.WithField("date", report.Today.String()).Info("payday")
	}
	for _, p := range report.Upcoming {
		rs.Logger.WithFields(logrus.Fields{
			"expense_id": p.Expense.ID,
			"amount":     p.Expense.Amount.StringFixed(generic.CurrencyPlaces),
			"due_date":   p.DueDate.String(),
			"in_days":    p.InDays,
		}).Info("payment due soon")
	}
}
