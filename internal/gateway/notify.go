package gateway

import (
	"context"
	"log/slog"
	"sync"

	"langsense-bot/internal/metrics"
)

// Notifier fans messages out to the admin set and to broadcast
// audiences. Delivery failures are counted, never fatal.
type Notifier struct {
	sender      Sender
	adminIDs    []int64
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewNotifier(sender Sender, adminIDs []int64, concurrency int, logger *slog.Logger, m *metrics.Metrics) *Notifier {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Notifier{
		sender:      sender,
		adminIDs:    adminIDs,
		concurrency: concurrency,
		logger:      logger.With("component", "notifier"),
		metrics:     m,
	}
}

// NotifyAdmins sends text to every configured admin.
func (n *Notifier) NotifyAdmins(ctx context.Context, text string) {
	n.Broadcast(ctx, n.adminIDs, text)
}

// Broadcast sends text to every chat id with bounded concurrency and
// returns how many deliveries succeeded and failed.
func (n *Notifier) Broadcast(ctx context.Context, chatIDs []int64, text string) (sent, failed int) {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, n.concurrency)
	)
	for _, chatID := range chatIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(chatID int64) {
			defer wg.Done()
			defer func() { <-sem }()
			err := n.sender.Send(ctx, chatID, text, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				n.metrics.BroadcastSends.WithLabelValues("failed").Inc()
				n.logger.Warn("broadcast delivery failed", "chat", chatID, "error", err)
				return
			}
			sent++
			n.metrics.BroadcastSends.WithLabelValues("sent").Inc()
		}(chatID)
	}
	wg.Wait()
	return sent, failed
}
