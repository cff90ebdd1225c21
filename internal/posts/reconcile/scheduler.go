package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// LikeCountStore repairs posts whose like count drifted from the likedBy
// set (documents written before the transactional toggle existed).
type LikeCountStore interface {
	ReconcileLikeCounts(ctx context.Context) (int, error)
}

type Scheduler struct {
	store LikeCountStore
	cron  *cron.Cron
}

func NewScheduler(store LikeCountStore) *Scheduler {
	return &Scheduler{store: store}
}

// Start runs the like-count audit nightly at 03:00.
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 3 * * *", func() {
		s.runOnce()
	})
	if err != nil {
		log.Printf("Failed to create reconcile cron job: %v", err)
		return
	}

	log.Println("Like-count reconcile scheduler started (nightly at 03:00)")
	c.Start()
	s.cron = c
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fixed, err := s.store.ReconcileLikeCounts(ctx)
	if err != nil {
		log.Printf("Like-count reconcile failed: %v", err)
		return
	}
	if fixed > 0 {
		log.Printf("Like-count reconcile repaired %d posts", fixed)
	}
}
