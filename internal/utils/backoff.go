package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/seek/internal/logger"
)

// Backoff is the startup retry policy shared by the Postgres and Redis connectors.
type Backoff struct {
	Total       time.Duration // give up after this long
	Initial     time.Duration // first wait, doubled after each failure
	Max         time.Duration // cap on a single wait
	PingTimeout time.Duration // deadline of one attempt
	WarnAfter   int           // attempts logged at warn before switching to error
}

// Validate rejects non-positive durations.
func (b Backoff) Validate() error {
	switch {
	case b.Total <= 0:
		return fmt.Errorf("connect timeout must be > 0, got %v", b.Total)
	case b.Initial <= 0:
		return fmt.Errorf("retry interval must be > 0, got %v", b.Initial)
	case b.Max <= 0:
		return fmt.Errorf("max wait must be > 0, got %v", b.Max)
	case b.PingTimeout <= 0:
		return fmt.Errorf("ping timeout must be > 0, got %v", b.PingTimeout)
	case b.WarnAfter < 0:
		return fmt.Errorf("warn threshold must be >= 0, got %d", b.WarnAfter)
	}
	return nil
}

// PingUntilReady calls ping until it succeeds or b.Total elapses, waiting
// with exponential backoff between attempts. service and addr only label logs.
// It returns the number of attempts made.
func PingUntilReady(ctx context.Context, service, addr string, b Backoff, ping func(context.Context) error, log logger.Logger) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.Total)
	defer cancel()

	log.Info("connecting to "+service,
		logger.String("addr", addr),
		logger.Duration("timeout", b.Total))

	start := time.Now()
	attempt := 0
	wait := b.Initial
	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, b.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected to "+service+" after retry",
					logger.String("addr", addr),
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				log.Info("connected to "+service, logger.String("addr", addr))
			}
			return attempt, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Error(service+" unavailable - failed to connect after timeout",
				logger.String("addr", addr),
				logger.Int("attempts", attempt),
				logger.Duration("timeout", b.Total),
				logger.Error(err))
			return attempt, fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				service, addr, attempt, b.Total, err)

		case <-timer.C:
			logRetry(log, service, addr, attempt, timeLeft(ctx), wait, b.WarnAfter, err)
			wait *= 2
			if wait > b.Max {
				wait = b.Max
			}
		}
	}
}

func logRetry(log logger.Logger, service, addr string, attempt int, remaining, next time.Duration, warnAfter int, err error) {
	fields := []logger.Field{
		logger.String("addr", addr),
		logger.Int("attempt", attempt),
		logger.Duration("next_retry_in", next),
		logger.Error(err),
	}
	switch {
	case remaining < 10*time.Second:
		log.Error(service+" still down - retrying but timeout approaching",
			append(fields, logger.Duration("remaining", remaining))...)
	case attempt <= warnAfter:
		log.Warn(service+" connection failed, retrying", fields...)
	default:
		log.Error(service+" still unavailable - connection attempts failing", fields...)
	}
}

func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
