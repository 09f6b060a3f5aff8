package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clinichq/admin-api/internal/domain"
	"github.com/clinichq/admin-api/internal/pkg/logger"
)

// Queue is the notification queue the worker drains.
type Queue interface {
	ListUnprocessed(ctx context.Context, limit int) ([]domain.EmailNotification, error)
	MarkProcessed(ctx context.Context, id string) error
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Worker drains the email-notification queue on an interval.
type Worker struct {
	queue     Queue
	sender    Sender
	renderer  *Renderer
	batchSize int
	interval  time.Duration
	running   bool
	mu        sync.Mutex
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewWorker creates a drain worker.
func NewWorker(queue Queue, sender Sender, batchSize int, interval time.Duration) *Worker {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Worker{
		queue:     queue,
		sender:    sender,
		renderer:  NewRenderer(),
		batchSize: batchSize,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start starts the worker loop.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("notify worker already running")
	}
	w.running = true
	w.mu.Unlock()

	logger.Info("starting notification worker",
		"interval", w.interval.String(),
		"batch_size", w.batchSize)

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the worker and waits for the loop to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain processes one batch of queued notifications. A row that fails to
// render or send stays unprocessed and is retried on the next pass; it never
// blocks the remaining rows. Returns the number of rows delivered.
func (w *Worker) Drain(ctx context.Context) int {
	rows, err := w.queue.ListUnprocessed(ctx, w.batchSize)
	if err != nil {
		logger.Error("failed to list queued notifications", "error", err)
		return 0
	}
	if len(rows) == 0 {
		return 0
	}

	sent := 0
	for i := range rows {
		n := &rows[i]

		msg, err := w.renderer.Render(n)
		if err != nil {
			logger.Error("failed to render notification",
				"id", n.ID, "email_type", string(n.EmailType), "error", err)
			continue
		}

		if err := w.sender.Send(ctx, msg); err != nil {
			logger.Error("failed to send notification",
				"id", n.ID, "email", msg.To, "error", err)
			continue
		}

		if err := w.queue.MarkProcessed(ctx, n.ID); err != nil {
			// Delivered but not marked: the row will be re-sent next pass.
			logger.Error("failed to mark notification processed",
				"id", n.ID, "error", err)
			continue
		}
		sent++
	}

	if sent > 0 {
		logger.Info("drained notification queue", "sent", sent, "queued", len(rows))
	}
	return sent
}
