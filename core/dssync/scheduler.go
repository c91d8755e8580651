package dssync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bluewitness-api/core/utils"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the dataset sync on a cron schedule. An empty schedule disables it.
type Scheduler struct {
	spec   string
	syncer *Syncer
	logger *utils.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewScheduler(spec string, syncer *Syncer, logger *utils.Logger) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("invalid ds.sync_schedule %q: %w", spec, err)
		}
	}
	return &Scheduler{spec: spec, syncer: syncer, logger: logger}, nil
}

func (s *Scheduler) Enabled() bool {
	return s != nil && s.spec != "" && s.syncer != nil
}

func (s *Scheduler) StartWithContext(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		s.logger.Errorf("dataset scheduler: %v", err)
		return
	}
	c.Start()
	s.cron = c
	s.running = true
	s.logger.Printf("dataset sync scheduled: %s", s.spec)
}

func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.syncer.Sync(ctx); err != nil {
		s.logger.Errorf("scheduled dataset sync: %v", err)
	}
}

func (s *Scheduler) StopWithContext(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()
	if !wasRunning || c == nil {
		return nil
	}
	stopped := c.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
