package notify

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// NoOpNotifier discards deals when no notification backend is configured,
// counting what it drops. One-shot CLI runs and unconfigured deployments
// use it so the engine never has to care whether notifications are wired.
type NoOpNotifier struct {
	log       *slog.Logger
	discarded atomic.Int64
}

// NewNoOpNotifier creates a notifier that discards deals with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendDeal logs and discards a single deal.
func (n *NoOpNotifier) SendDeal(_ context.Context, deal *DealPayload) error {
	n.discarded.Add(1)
	n.log.Debug("notification discarded (no backend configured)",
		"title", deal.Title,
		"store", deal.Store,
		"discount", deal.DiscountPercent,
	)
	return nil
}

// SendDealBatch logs and discards a batch of deals.
func (n *NoOpNotifier) SendDealBatch(_ context.Context, deals []DealPayload, cycleID string) error {
	n.discarded.Add(int64(len(deals)))
	n.log.Debug("batch notification discarded (no backend configured)",
		"cycle", cycleID,
		"count", len(deals),
	)
	return nil
}

// Discarded returns how many deals have been dropped since construction.
func (n *NoOpNotifier) Discarded() int64 {
	return n.discarded.Load()
}
