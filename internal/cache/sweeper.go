package cache

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper purges expired entries on a cron schedule
type Sweeper struct {
	manager *Manager
	cron    *cron.Cron
}

// NewSweeper schedules Purge on the manager. schedule is a standard cron
// expression or a descriptor such as "@every 10m".
func NewSweeper(manager *Manager, schedule string) (*Sweeper, error) {
	s := &Sweeper{manager: manager, cron: cron.New()}

	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("scheduling cache sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule in its own goroutine
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop stops the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	removed, err := s.manager.Purge(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Cache sweep failed")
		return
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("Cache sweep removed expired entries")
	}
}
