package email

import (
	"context"
	"errors"

	"github.com/gracechurch/portal/internal/portal/domain"
)

// Dispatcher runs outbound email work through the rate limiter and the
// monitor. Work may be a direct send or an identity-provider call that
// makes the provider send mail.
type Dispatcher struct {
	Limiter *RateLimiter
	Monitor *Monitor
	Sender  Sender
}

// Dispatch admits fn through the limiter and records its outcome. A local
// refusal is logged as rate_limited and returned as *RateLimitError.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	typ domain.EmailType,
	recipient string,
	fn func(ctx context.Context) error,
) error {
	err := d.Limiter.Send(ctx, func(ctx context.Context) error {
		return d.Monitor.WithMonitoring(ctx, typ, recipient, fn)
	})

	var rle *RateLimitError
	if errors.As(err, &rle) {
		d.Monitor.LogAttempt(ctx, typ, recipient, domain.EmailRateLimited, map[string]any{
			"reason":       rle.Reason,
			"wait_minutes": rle.WaitMinutes,
		})
	}
	return err
}

// Deliver sends msg through the Sender under Dispatch.
func (d *Dispatcher) Deliver(ctx context.Context, typ domain.EmailType, msg Message) error {
	return d.Dispatch(ctx, typ, msg.To, func(ctx context.Context) error {
		return d.Sender.Send(ctx, msg)
	})
}

// LinkMailer delivers identity confirmation and recovery links composed by
// Composer. It sends directly: callers already run the identity operation
// that triggers it under Dispatch.
type LinkMailer struct {
	Sender   Sender
	Composer Composer
}

func (m LinkMailer) SendLink(ctx context.Context, kind domain.EmailType, to, token string) error {
	return m.Sender.Send(ctx, m.Composer.Link(kind, to, token))
}
