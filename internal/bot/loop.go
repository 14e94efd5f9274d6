// Package bot runs the interactive command loop: it long-polls the chat
// transport for inbound commands and button presses and re-runs the poll
// pass on demand.
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ignite/parcel-monitor/internal/notify"
	"github.com/ignite/parcel-monitor/internal/tracker"
)

// TriggerCommand is the exact text command that triggers a refresh.
const TriggerCommand = "/track"

// UpdateSource is the inbound side of the chat transport. Implemented by
// *notify.Telegram; tests feed canned update sequences through a fake.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64) ([]notify.Update, error)
	AnswerCallback(ctx context.Context, callbackID string) error
	SendWithRefreshButton(ctx context.Context, text string) error
}

// PassRunner runs one full poll pass. Implemented by *tracker.Runner.
type PassRunner interface {
	RunPass(ctx context.Context) (*tracker.PassReport, error)
}

// Loop consumes chat updates and dispatches refresh commands. It runs
// one pass at startup and then polls until the context is cancelled or
// Stop is called.
type Loop struct {
	source UpdateSource
	runner PassRunner
	sender notify.Sender
	idle   time.Duration
	log    zerolog.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a command loop. idle is the sleep between empty poll
// responses.
func New(source UpdateSource, runner PassRunner, sender notify.Sender, idle time.Duration, log zerolog.Logger) *Loop {
	if idle <= 0 {
		idle = 2 * time.Second
	}
	return &Loop{
		source: source,
		runner: runner,
		sender: sender,
		idle:   idle,
		log:    log,
		stop:   make(chan struct{}),
	}
}

// Stop signals the loop to exit after the in-flight iteration. Safe to
// call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Run executes the startup pass and then the update-consumption loop.
// The cursor advances past an update only after it has been handed to
// the handler, so a crash mid-handling reprocesses it on restart
// (at-least-once).
func (l *Loop) Run(ctx context.Context) error {
	l.startupPass(ctx)

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.stop:
			return nil
		default:
		}

		updates, err := l.source.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.log.Warn().Err(err).Msg("getUpdates failed")
			l.sleep(ctx)
			continue
		}

		for _, u := range updates {
			l.handle(ctx, u)
			offset = u.UpdateID + 1
		}

		if len(updates) == 0 {
			l.sleep(ctx)
		}
	}
}

func (l *Loop) startupPass(ctx context.Context) {
	report, err := l.runner.RunPass(ctx)
	if err != nil {
		// Interactive mode keeps polling; the next command retries.
		l.log.Error().Err(err).Msg("startup pass failed")
		return
	}
	l.sendTable(ctx, report)
}

func (l *Loop) handle(ctx context.Context, u notify.Update) {
	switch {
	case u.Message != nil && strings.TrimSpace(u.Message.Text) == TriggerCommand:
		l.refresh(ctx)
	case u.CallbackQuery != nil && u.CallbackQuery.Data == notify.RefreshAction:
		if err := l.source.AnswerCallback(ctx, u.CallbackQuery.ID); err != nil {
			l.log.Warn().Err(err).Msg("callback ack failed")
		}
		l.refresh(ctx)
	}
}

// refresh announces the pass, runs it to completion and delivers the
// tracking table with a fresh refresh button. The loop does not poll for
// further commands until the pass finishes.
func (l *Loop) refresh(ctx context.Context) {
	if err := l.sender.Send(ctx, "🔄 Refreshing tracking statuses..."); err != nil {
		l.log.Warn().Err(err).Msg("announce delivery failed")
	}

	report, err := l.runner.RunPass(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("refresh pass failed")
		if err := l.sender.Send(ctx, "⚠️ Refresh failed: "+err.Error()); err != nil {
			l.log.Warn().Err(err).Msg("failure notice delivery failed")
		}
		return
	}
	l.sendTable(ctx, report)
}

func (l *Loop) sendTable(ctx context.Context, report *tracker.PassReport) {
	table := notify.FormatTable(report.TableRows())
	if err := l.source.SendWithRefreshButton(ctx, table); err != nil {
		l.log.Warn().Err(err).Msg("table delivery failed")
	}
}

func (l *Loop) sleep(ctx context.Context) {
	timer := time.NewTimer(l.idle)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-l.stop:
	}
}
