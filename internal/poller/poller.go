package poller

import (
	"context"
	"log"
	"time"

	"jabber-dashboard/config"
	"jabber-dashboard/internal/notification"
	"jabber-dashboard/internal/state"
	"jabber-dashboard/internal/upstream"
)

// Service refreshes the classroom working copy on a fixed interval and
// dispatches availability alerts for rooms that freed up. It runs for as
// long as its context lives; cancelling the context tears the loop down.
type Service struct {
	cfg       *config.Config
	client    *upstream.Client
	workspace *state.Workspace
	pool      *notification.WorkerPool // nil when push is disabled
}

// NewService creates the availability poller.
func NewService(cfg *config.Config, client *upstream.Client, ws *state.Workspace, pool *notification.WorkerPool) *Service {
	return &Service{
		cfg:       cfg,
		client:    client,
		workspace: ws,
		pool:      pool,
	}
}

// Run starts the polling loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Poller.Enabled {
		log.Println("Availability poller is disabled. Not starting.")
		return
	}
	log.Println("Starting availability poller...")

	if s.pool != nil {
		s.pool.Start(ctx)
	}

	s.PollOnce(ctx)

	timer := time.NewTimer(s.cfg.Poller.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Availability poller shutting down.")
			return
		case <-timer.C:
			s.PollOnce(ctx)
			timer.Reset(s.cfg.Poller.Interval)
		}
	}
}

// PollOnce performs a single refresh cycle. A failed fetch leaves the
// working copy untouched; a snapshot that lost a race against a newer local
// mutation is discarded and the next cycle supersedes it.
func (s *Service) PollOnce(ctx context.Context) {
	begin := s.workspace.Seq()

	rooms, err := s.client.SearchClassrooms(ctx, upstream.SearchQuery{})
	if err != nil {
		log.Printf("Poll cycle failed, keeping previous classroom snapshot: %v", err)
		return
	}

	applied, freed := s.workspace.ReplaceClassrooms(begin, rooms)
	if !applied {
		log.Println("Poll cycle discarded: workspace changed while the fetch was in flight.")
		return
	}

	if s.pool == nil || len(freed) == 0 {
		return
	}
	log.Printf("Dispatching availability alerts for %d classrooms", len(freed))
	for _, room := range freed {
		s.pool.Dispatch(notification.RoomFreed{
			ClassroomID: room.ClassroomID,
			RoomNumber:  room.RoomNumber,
		})
	}
}
