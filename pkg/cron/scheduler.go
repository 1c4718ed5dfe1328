// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/smartspend/backend/internal/domain/chat"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron    *cron.Cron
	history *chat.History
	logger  *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(history *chat.History, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		history: history,
		logger:  logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Chat history retention prune: runs daily at 3:00 AM.
	_, err := s.cron.AddFunc("0 3 * * *", s.pruneChatHistory)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the history prune (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.pruneChatHistory()
}

func (s *Scheduler) pruneChatHistory() {
	removed := s.history.Prune()
	s.logger.Info("chat history pruned",
		slog.Int("removed", removed),
		slog.Int("remaining", s.history.Len()),
	)
}
