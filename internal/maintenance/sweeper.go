package maintenance

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/dmarceta/meet-accounts-be/internal/services"
)

// Sweeper periodically deletes expired refresh-token rows so the allowlist
// stays bounded by the number of live tokens.
type Sweeper struct {
	tokenSvc services.TokenServiceProvider
	schedule cron.Schedule
	done     chan bool
}

// NewSweeper creates a sweeper from a standard cron expression
// (descriptors like "@hourly" are accepted).
func NewSweeper(tokenSvc services.TokenServiceProvider, cronExpr string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cronExpr, err)
	}
	return &Sweeper{
		tokenSvc: tokenSvc,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the sweeper loop. It blocks until Stop is called.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting refresh-token sweeper")

	// Run once immediately on start
	s.sweep()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping refresh-token sweeper")
			return
		case <-timer.C:
			s.sweep()
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

func (s *Sweeper) sweep() {
	purged, err := s.tokenSvc.PurgeExpired()
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to purge expired refresh tokens")
		return
	}
	if purged > 0 {
		log.Info().Int64("purged", purged).Msg("Sweeper: removed expired refresh tokens")
	}
}
