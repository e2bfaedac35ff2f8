package notify

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"complaintportal/internal/storage"
)

// Mailer delivers notification jobs over SMTP. Attachments are pulled from
// the object store by key at send time.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	store  storage.ObjectStore
	log    *zap.Logger

	attempts int
	backoff  time.Duration
}

// NewMailer creates a mailer with three attempts and exponential backoff,
// starting at two seconds.
func NewMailer(host string, port int, user, password, from string, store storage.ObjectStore, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{
		dialer:   gomail.NewDialer(host, port, user, password),
		from:     from,
		store:    store,
		log:      log,
		attempts: 3,
		backoff:  2 * time.Second,
	}
}

// Send delivers one job, retrying transient failures with backoff. A job
// that still fails after the final attempt is dropped and logged: delivery
// is at-least-attempted, not guaranteed.
func (m *Mailer) Send(ctx context.Context, job Job) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", job.Recipient)
	msg.SetHeader("Subject", job.Subject)
	msg.SetBody("text/plain", job.TextBody)
	msg.AddAlternative("text/html", job.HTMLBody)
	m.attach(ctx, msg, job.AttachmentKeys)

	var lastErr error
	delay := m.backoff
	for attempt := 1; attempt <= m.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
				delay *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = m.dialer.DialAndSend(msg); lastErr == nil {
			sentTotal.Inc()
			m.log.Info("email sent",
				zap.String("recipient", job.Recipient),
				zap.String("complaintId", job.ComplaintID))
			return nil
		}
		m.log.Warn("email send failed",
			zap.Int("attempt", attempt),
			zap.String("recipient", job.Recipient),
			zap.Error(lastErr))
	}
	sendFailed.Inc()
	return fmt.Errorf("send to %s: %w", job.Recipient, lastErr)
}

// attach copies stored objects into the message. A missing attachment is
// logged and skipped so the confirmation still goes out.
func (m *Mailer) attach(ctx context.Context, msg *gomail.Message, keys []string) {
	if m.store == nil {
		return
	}
	for _, key := range keys {
		key := key
		msg.Attach(path.Base(key), gomail.SetCopyFunc(func(w io.Writer) error {
			obj, err := m.store.Get(ctx, key)
			if err != nil {
				m.log.Warn("attachment fetch failed", zap.String("key", key), zap.Error(err))
				return nil
			}
			defer obj.Close()
			if _, err := io.Copy(w, obj); err != nil {
				m.log.Warn("attachment copy failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}))
	}
}
