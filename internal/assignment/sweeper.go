package assignment

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically runs the bulk assignment over all upcoming
// stages, so registrations created between manual runs still end up in
// beds without operator action.
type Sweeper struct {
	cron     *cron.Cron
	engine   *Engine
	interval int
}

// NewSweeper creates a sweeper running every intervalMin minutes.
func NewSweeper(engine *Engine, intervalMin int) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		engine:   engine,
		interval: intervalMin,
	}
}

// Start begins the periodic sweep. An interval of zero or less disables
// the sweeper entirely.
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		log.Println("Auto-assign sweeper disabled")
		return nil
	}

	spec := fmt.Sprintf("@every %dm", s.interval)
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("scheduling auto-assign sweep: %w", err)
	}

	s.cron.Start()
	log.Printf("Auto-assign sweeper started (every %dm)", s.interval)
	return nil
}

// Stop gracefully shuts down the sweeper, waiting for a running sweep
// to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Auto-assign sweeper stopped")
}

func (s *Sweeper) sweep() {
	ctx := context.Background()

	results, err := s.engine.AutoAssignAllUpcoming(ctx)
	if err != nil {
		log.Printf("Auto-assign sweep failed: %v", err)
		return
	}

	assigned, failed := 0, 0
	for _, r := range results {
		if r.Summary != nil {
			assigned += r.Summary.TotalAssigned
			failed += r.Summary.TotalFailed
		}
	}

	if assigned > 0 || failed > 0 {
		log.Printf("Auto-assign sweep: %d stages, %d assigned, %d unplaced", len(results), assigned, failed)
	}
}
