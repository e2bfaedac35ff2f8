package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"complaintportal/internal/complaint"
)

// Dispatcher enqueues outbound email jobs. It satisfies
// complaint.Dispatcher: the confirmation enqueue is best-effort and a
// failure is logged, never surfaced to the submitting caller.
type Dispatcher struct {
	queue      Queue
	feedbackTo string
	log        *zap.Logger
}

// NewDispatcher creates a dispatcher over a queue. feedbackTo is the inbox
// feedback submissions are mailed to.
func NewDispatcher(queue Queue, feedbackTo string, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{queue: queue, feedbackTo: feedbackTo, log: log}
}

// ComplaintRegistered builds and enqueues the confirmation job. The write
// behind it has already committed, so this uses its own short deadline
// rather than the request context.
func (d *Dispatcher) ComplaintRegistered(c complaint.Complaint) {
	msg, err := EncodeJob(TypeComplaintRegistered, BuildRegistrationJob(c))
	if err != nil {
		d.log.Error("encode notification", zap.String("id", c.ID), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.queue.Publish(ctx, msg); err != nil {
		enqueueFailed.Inc()
		d.log.Error("enqueue notification", zap.String("id", c.ID), zap.Error(err))
		return
	}
	enqueuedTotal.Inc()
}

// FeedbackReceived enqueues a feedback email. Unlike complaint
// confirmations there is no record behind it, so a failed enqueue is
// reported to the caller.
func (d *Dispatcher) FeedbackReceived(ctx context.Context, f Feedback) error {
	msg, err := EncodeJob(TypeFeedbackReceived, BuildFeedbackJob(d.feedbackTo, f))
	if err != nil {
		return err
	}
	if err := d.queue.Publish(ctx, msg); err != nil {
		enqueueFailed.Inc()
		return err
	}
	enqueuedTotal.Inc()
	return nil
}
