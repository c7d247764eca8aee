package kitchen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"frontdesk/internal/events"
	"frontdesk/internal/metrics"
	"frontdesk/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Notifier delivers one order to a kitchen channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, o Order) error
}

// RetryConfig controls redelivery of a failed order.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig retries twice, quickly, so an invoice save is not held
// up for long.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  2,
		RetryDelays: []time.Duration{500 * time.Millisecond, 2 * time.Second},
	}
}

func (c RetryConfig) delay(attempt int) time.Duration {
	if len(c.RetryDelays) == 0 {
		return 0
	}
	if attempt >= len(c.RetryDelays) {
		return c.RetryDelays[len(c.RetryDelays)-1]
	}
	return c.RetryDelays[attempt]
}

// Dispatcher turns saved invoices into kitchen orders.
type Dispatcher struct {
	notifier Notifier
	limiter  *rate.Limiter
	retry    RetryConfig
	timeout  time.Duration
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewDispatcher creates a dispatcher. A nil notifier disables delivery;
// perSecond <= 0 disables rate limiting.
func NewDispatcher(notifier Notifier, perSecond float64, burst int, retry RetryConfig, logger *zerolog.Logger) *Dispatcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Dispatcher{
		notifier: notifier,
		limiter:  rate.NewLimiter(limit, burst),
		retry:    retry,
		timeout:  30 * time.Second,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch sends every kitchen order of inv and returns how many were sent.
// A failing order does not stop the remaining ones.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *models.Invoice) (int, error) {
	orders := OrdersFor(inv, d.now())
	if len(orders) == 0 {
		return 0, nil
	}
	if d.notifier == nil {
		d.logger.Warn().
			Str("invoice", inv.Number).
			Int("orders", len(orders)).
			Msg("kitchen channel not configured, orders not sent")
		metrics.IncKitchen("none", "skipped")
		return 0, nil
	}

	sent := 0
	var errs []error
	for _, o := range orders {
		if err := d.send(ctx, o); err != nil {
			errs = append(errs, fmt.Errorf("order %s (%s): %w", o.ID, o.Service, err))
			metrics.IncKitchen(d.notifier.Name(), "failed")
			continue
		}
		sent++
		metrics.IncKitchen(d.notifier.Name(), "sent")
		d.logger.Info().
			Str("order_id", o.ID).
			Str("invoice", o.Invoice).
			Str("status", o.Status).
			Msg("kitchen order sent")
	}
	return sent, errors.Join(errs...)
}

func (d *Dispatcher) send(ctx context.Context, o Order) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= d.retry.MaxRetries; attempt++ {
		err := d.notifier.Notify(ctx, o)
		if err == nil {
			return nil
		}
		lastErr = err

		wait := d.retry.delay(attempt)
		var herr *HTTPError
		if errors.As(err, &herr) {
			switch {
			case herr.Code == http.StatusTooManyRequests:
				if herr.RetryAfter > 0 {
					wait = herr.RetryAfter
				}
			case herr.Code >= 400 && herr.Code < 500:
				return err
			}
		}
		if attempt == d.retry.MaxRetries {
			break
		}

		d.logger.Debug().Err(err).Int("attempt", attempt+1).Dur("delay", wait).Msg("retrying kitchen order")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// Handler adapts the dispatcher to invoice.saved events.
func (d *Dispatcher) Handler() events.Handler {
	return func(e events.Event) error {
		var inv models.Invoice
		if err := e.Decode(&inv); err != nil {
			return fmt.Errorf("decode invoice event: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if _, err := d.Dispatch(ctx, &inv); err != nil {
			metrics.IncSideEffectFailure("kitchen")
			return err
		}
		return nil
	}
}
