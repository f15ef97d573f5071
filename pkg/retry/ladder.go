// ABOUTME: Fixed-delay retry ladder used for feed fetches and content extraction
// ABOUTME: Each failed attempt waits the next rung; cancellation interrupts the wait

package retry

import (
	"context"
	"fmt"
	"time"

	"aiml-digests/core/interfaces"
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Seconds builds a ladder of whole-second delays
func Seconds(secs ...int) []time.Duration {
	out := make([]time.Duration, len(secs))
	for i, s := range secs {
		out[i] = time.Duration(s) * time.Second
	}
	return out
}

// Ladder runs an operation up to len(Delays) times, sleeping Delays[i] after failed attempt i.
// No sleep follows the last attempt.
type Ladder struct {
	Delays []time.Duration
	Sleep  SleepFunc
	Logger interfaces.Logger

	// Name labels log lines
	Name string
}

// Do runs op until it succeeds, the ladder is exhausted or ctx is cancelled.
// op receives the zero-based attempt number.
func (l Ladder) Do(ctx context.Context, op func(attempt int) error) error {
	sleep := l.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	attempts := len(l.Delays)
	if attempts == 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(attempt)
		if lastErr == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		wait := l.Delays[attempt]
		if l.Logger != nil {
			l.Logger.Warn("Attempt failed, retrying", map[string]interface{}{
				"operation": l.Name,
				"attempt":   attempt + 1,
				"retry_in":  wait.String(),
				"error":     lastErr.Error(),
			})
		}
		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", l.label(), attempts, lastErr)
}

func (l Ladder) label() string {
	if l.Name == "" {
		return "operation"
	}
	return l.Name
}
