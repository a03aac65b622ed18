// Package sweeper wires up the cron job that expires overdue offers and
// hands their jobs to the next candidate.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// OfferExpirer advances overdue pending offers. Returns how many expired.
type OfferExpirer interface {
	ExpireDueOffers(ctx context.Context, limit int) (int, error)
}

// Sweeper runs the expiry sweep on a fixed interval.
type Sweeper struct {
	cron      *cron.Cron
	expirer   OfferExpirer
	batchSize int
	spec      string
	logger    *slog.Logger
}

// New creates a Sweeper that fires every interval.
func New(expirer OfferExpirer, interval time.Duration, batchSize int, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cron:      cron.New(),
		expirer:   expirer,
		batchSize: batchSize,
		spec:      fmt.Sprintf("@every %s", interval),
		logger:    logger,
	}
}

// Start registers the sweep and starts the scheduler. One sweep runs
// immediately so offers that expired while the service was down are handled
// without waiting for the first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("offer expiry sweep started", slog.String("spec", s.spec))

	go s.sweep(ctx)

	return nil
}

// Stop shuts down the scheduler, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("offer expiry sweep stopped")
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired, err := s.expirer.ExpireDueOffers(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("offer expiry sweep failed", slog.Any("error", err))
		return
	}
	if expired > 0 {
		s.logger.Info("expired overdue offers", slog.Int("count", expired))
	}
}
