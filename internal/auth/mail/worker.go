package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/devcrm/auth-service/internal/auth/queue"
)

const (
	dequeueTimeout = 5 * time.Second
	maxAttempts    = 3
)

// Worker drains the email queue and hands each job to the configured
// sender. Failed jobs are requeued up to maxAttempts before being dropped.
type Worker struct {
	Queue       *queue.Queue
	Sender      Sender
	Log         *slog.Logger
	FrontendURL string
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.Queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.Log.Error("dequeue failed", "err", err)

			// Back off rather than hot-looping against a down Redis.
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		if job == nil {
			continue // timeout, poll again
		}

		if err := w.handle(ctx, job); err != nil {
			w.Log.Error("job failed", "job", job.Name, "id", job.ID, "attempts", job.Attempts, "err", err)
			if job.Attempts+1 >= maxAttempts {
				w.Log.Error("job dropped after max attempts", "job", job.Name, "id", job.ID)
				continue
			}
			if err := w.Queue.Requeue(ctx, job); err != nil {
				w.Log.Error("requeue failed", "job", job.Name, "id", job.ID, "err", err)
			}
			continue
		}
		w.Log.Info("job done", "job", job.Name, "id", job.ID)
	}
}

func (w *Worker) handle(ctx context.Context, job *queue.Job) error {
	switch job.Name {
	case JobSendVerificationEmail:
		var p VerificationEmailPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		link := w.FrontendURL + "/verify-email?token=" + url.QueryEscape(p.Token)
		return w.Sender.Send(ctx, VerificationEmail(p.To, link))

	case JobSendResetPwdEmail:
		var p ResetPwdEmailPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return w.Sender.Send(ctx, ResetPasswordEmail(p.To, p.URL))

	default:
		return errors.New("unknown job " + job.Name)
	}
}
