package jobs

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"RevBridge/internal/config"
	"RevBridge/internal/serviceiface"
	"RevBridge/internal/store"
)

// SchedulerService re-runs the bridge from the configured input path on a
// cron schedule, so the published artifacts track a file that is refreshed
// out of band (e.g. a nightly billing extract).
type SchedulerService struct {
	config *config.Config
	store  *store.Store
	cron   *cron.Cron
}

func NewSchedulerService(cfg *config.Config, st *store.Store) serviceiface.Service {
	return &SchedulerService{config: cfg, store: st}
}

func (s *SchedulerService) Name() string {
	return "scheduler"
}

func (s *SchedulerService) Start() error {
	schedule := s.config.Service.Schedule
	if schedule == "" {
		log.Println("[Scheduler] no schedule configured, scheduler idle")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		log.Printf("[Scheduler] scheduled refresh from %s", s.config.Files.PathIn)
		if _, err := RefreshFromFile(context.Background(), s.config, s.store); err != nil {
			log.Printf("[Scheduler] refresh failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron = c
	c.Start()
	log.Printf("[Scheduler] started with schedule %q", schedule)
	return nil
}

func (s *SchedulerService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
		log.Println("[Scheduler] stopped")
	}
	return nil
}
