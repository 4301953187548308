// Package digest logs a summary of the worklist on a cron schedule while
// the server runs.
package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"outreach/internal/domain"
	"outreach/internal/worklist"
)

// Source provides the current worklist.
type Source interface {
	Today(ctx context.Context) (worklist.Worklist, error)
}

// Summary counts the worklist buckets. Calls and Emails count pending work
// that is due today or overdue.
type Summary struct {
	Overdue   int `json:"overdue"`
	DueToday  int `json:"due_today"`
	Completed int `json:"completed"`
	Calls     int `json:"calls"`
	Emails    int `json:"emails"`
}

func Summarize(wl worklist.Worklist) Summary {
	sum := Summary{Overdue: len(wl.Overdue), DueToday: len(wl.DueToday), Completed: len(wl.Completed)}
	for _, bucket := range [][]domain.Task{wl.Overdue, wl.DueToday} {
		for _, t := range bucket {
			switch t.ActionType {
			case domain.ActionCall:
				sum.Calls++
			case domain.ActionEmail:
				sum.Emails++
			}
		}
	}
	return sum
}

// Service runs the digest job.
type Service struct {
	spec    string
	src     Source
	log     zerolog.Logger
	timeout time.Duration

	mu sync.Mutex
	c  *cron.Cron
}

// New validates spec, a standard five-field cron expression.
func New(spec string, src Source, log zerolog.Logger) (*Service, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("digest cron %q: %w", spec, err)
	}
	return &Service{spec: spec, src: src, log: log, timeout: 30 * time.Second}, nil
}

// Start schedules the job. It stops when ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	c := cron.New(cron.WithLocation(time.Local))
	if _, err := c.AddFunc(s.spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		_, _ = s.RunOnce(runCtx)
	}); err != nil {
		return err
	}
	s.c = c
	c.Start()
	s.log.Info().Str("cron", s.spec).Msg("digest scheduled")
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
	s.c = nil
}

// RunOnce computes and logs the digest immediately.
func (s *Service) RunOnce(ctx context.Context) (Summary, error) {
	wl, err := s.src.Today(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("digest failed")
		return Summary{}, err
	}
	sum := Summarize(wl)
	s.log.Info().
		Int("overdue", sum.Overdue).
		Int("due_today", sum.DueToday).
		Int("completed", sum.Completed).
		Int("calls", sum.Calls).
		Int("emails", sum.Emails).
		Msg("worklist digest")
	return sum, nil
}
