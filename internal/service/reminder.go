package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/model"
)

// DueActivities lists incomplete activities with an assignee whose due date
// falls in [from, to).
type DueActivities interface {
	DueBetween(ctx context.Context, from, to time.Time) ([]model.Activity, error)
}

// TaskNotifier delivers a single task reminder.  *Mailer implements it.
type TaskNotifier interface {
	NotifyTaskDue(ctx context.Context, to string, a model.Activity) error
}

// Reminder mails assignees once an activity comes within Lead of its due
// date.  Each tick covers the due dates that entered that window since the
// previous tick, so a running process sends one reminder per activity.  The
// window is kept in memory and starts over on restart.  A Reminder is
// driven by a single goroutine.
type Reminder struct {
	Activities DueActivities
	Notifier   TaskNotifier
	Lead       time.Duration
	Log        *zap.Logger

	now   func() time.Time
	until time.Time
}

func NewReminder(acts DueActivities, n TaskNotifier, lead time.Duration, log *zap.Logger) *Reminder {
	return &Reminder{Activities: acts, Notifier: n, Lead: lead, Log: log, now: time.Now}
}

// Tick sends the reminders that became due since the last tick and returns
// how many went out.  A failed delivery is logged and does not stop the
// rest of the batch.
func (r *Reminder) Tick(ctx context.Context) (int, error) {
	now := r.now().UTC()
	if r.until.IsZero() {
		r.until = now
	}
	from := r.until
	to := now.Add(r.Lead)
	if !to.After(from) {
		return 0, nil
	}
	acts, err := r.Activities.DueBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("due activities: %w", err)
	}
	sent := 0
	for _, a := range acts {
		if a.AssignedTo == nil || a.AssignedTo.Email == "" {
			continue
		}
		if err := r.Notifier.NotifyTaskDue(ctx, a.AssignedTo.Email, a); err != nil {
			if ctx.Err() != nil {
				return sent, ctx.Err()
			}
			r.Log.Warn("task reminder failed", zap.String("activity_id", a.ID),
				zap.String("to", a.AssignedTo.Email), zap.Error(err))
			continue
		}
		sent++
	}
	r.until = to
	return sent, nil
}

// Run ticks immediately and then every interval until ctx ends.
func (r *Reminder) Run(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		n, err := r.Tick(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			r.Log.Error("task reminder tick", zap.Error(err))
		case n > 0:
			r.Log.Info("task reminders sent", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
