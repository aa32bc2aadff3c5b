package tenantdomain

import (
	"context"
	"time"

	"go_domains/internal/dto"
	"go_domains/internal/provider"
	"go_domains/internal/ws"

	"github.com/sirupsen/logrus"
)

// WorkerConfig holds configuration for the verification worker
type WorkerConfig struct {
	Enabled     bool
	IntervalSec int
	BatchSize   int
}

// Worker periodically re-verifies pending and errored tenant domains.
// It is the scheduled caller the verification design assumes; each pass is
// one read-only provider query per due domain, so overlapping manual
// rechecks are harmless.
type Worker struct {
	service *Service
	logger  *logrus.Entry
	config  WorkerConfig
	stopCh  chan struct{}
}

// NewWorker creates a new verification worker
func NewWorker(service *Service, logger *logrus.Entry, config WorkerConfig) *Worker {
	return &Worker{
		service: service,
		logger:  logger,
		config:  config,
		stopCh:  make(chan struct{}),
	}
}

// Start starts the worker loop
func (w *Worker) Start() {
	if !w.config.Enabled {
		w.logger.Info("verification worker disabled, not starting")
		return
	}

	w.logger.WithFields(logrus.Fields{
		"interval_sec": w.config.IntervalSec,
		"batch_size":   w.config.BatchSize,
	}).Info("verification worker starting")

	go w.run()
}

// Stop stops the worker
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) run() {
	ticker := time.NewTicker(time.Duration(w.config.IntervalSec) * time.Second)
	defer ticker.Stop()

	// Run immediately on start
	w.tick()

	for {
		select {
		case <-ticker.C:
			w.tick()
		case <-w.stopCh:
			w.logger.Info("verification worker stopped")
			return
		}
	}
}

// tick verifies one batch of due domains
func (w *Worker) tick() {
	listCtx, cancelList := context.WithTimeout(context.Background(), 15*time.Second)
	records, err := w.service.GetDue(listCtx, w.config.BatchSize)
	cancelList()
	if err != nil {
		w.logger.WithError(err).Error("failed to load due domains")
		return
	}
	if len(records) == 0 {
		return
	}

	var stats struct {
		verified    int
		pending     int
		errored     int
		transitions int
	}

	for _, record := range records {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		updated, status, changed, err := w.service.Verify(ctx, record.ID, true)
		cancel()

		if err != nil {
			w.logger.WithError(err).WithField("domain", record.Domain).Error("verification pass failed")
			continue
		}

		switch {
		case status.Verified:
			stats.verified++
		case status.Status == provider.StatusError:
			stats.errored++
		default:
			stats.pending++
		}

		if changed {
			stats.transitions++
			if err := ws.PublishDomainEvent("update", dto.FromTenantDomain(updated)); err != nil {
				w.logger.WithError(err).WithField("domain", record.Domain).Warn("failed to publish domain event")
			}
		}
	}

	w.logger.WithFields(logrus.Fields{
		"candidates":  len(records),
		"verified":    stats.verified,
		"pending":     stats.pending,
		"errored":     stats.errored,
		"transitions": stats.transitions,
	}).Info("verification tick complete")
}
