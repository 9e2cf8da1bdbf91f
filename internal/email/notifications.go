package email

import (
	"context"
	"errors"
	"log"
	"time"

	"yuvai/internal/config"
	"yuvai/internal/metrics"
	"yuvai/internal/tasks"
)

// sendTimeout bounds one delivery attempt.
const sendTimeout = 30 * time.Second

// Notifier renders and dispatches account emails through the task queue.
type Notifier struct {
	sender    Sender
	templates *Templates
	queue     *tasks.Queue
}

// NewNotifier creates a notifier. A nil sender means email is disabled and
// codes are written to the server log instead.
func NewNotifier(cfg *config.Config, sender Sender, queue *tasks.Queue) *Notifier {
	return &Notifier{
		sender:    sender,
		templates: NewTemplates(cfg),
		queue:     queue,
	}
}

// SendOTP queues the verification code email and returns without waiting.
// When delivery is impossible the code is logged so an operator can relay it.
func (n *Notifier) SendOTP(username, to, code string) *tasks.Handle {
	subject, htmlBody, textBody := n.templates.VerificationCode(username, code)
	msg := &Message{To: []string{to}, Subject: subject, HTML: htmlBody, Text: textBody}

	h := n.queue.Submit("otp:"+username, func(ctx context.Context) error {
		if n.sender == nil {
			log.Printf("Email disabled, manual verification code for %s: %s", username, code)
			metrics.RecordEmail(metrics.EmailDisabled)
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()

		if err := n.sender.Send(ctx, msg); err != nil {
			log.Printf("Failed to send verification email to %s: %v (manual code for %s: %s)", to, err, username, code)
			metrics.RecordEmail(metrics.EmailFailed)
			return err
		}

		log.Printf("Verification email sent to %s", to)
		metrics.RecordEmail(metrics.EmailSent)
		return nil
	})

	select {
	case <-h.Done():
		if err := h.Err(); errors.Is(err, tasks.ErrQueueFull) || errors.Is(err, tasks.ErrQueueClosed) {
			log.Printf("Verification email for %s not queued: %v (manual code: %s)", username, err, code)
			metrics.RecordEmail(metrics.EmailDropped)
		}
	default:
	}

	return h
}
