// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// maxBackoffDelay caps exponential growth so a stubborn endpoint cannot
// stall an ingestion worker between attempts for minutes.
const maxBackoffDelay = 8 * time.Second

// RetryWithBackoff runs operation up to maxAttempts times. Failed attempts
// sleep with exponential backoff and equal jitter before the next try, and a
// canceled context aborts the run immediately, including mid-sleep. The last
// attempt's error is returned when every attempt fails.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = operation(); lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation recovered", "attempt", attempt)
			}
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		slog.Debug("operation failed, backing off",
			"attempt", attempt, "maxAttempts", maxAttempts, "err", lastErr)

		if err := sleepWithJitter(ctx, backoffDelay(baseDelay, attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// backoffDelay doubles baseDelay for each completed attempt, capped at
// maxBackoffDelay. The shift can overflow for large attempt counts, which
// the non-positive check folds into the cap.
func backoffDelay(baseDelay time.Duration, attempt int) time.Duration {
	if baseDelay <= 0 {
		return 0
	}
	delay := baseDelay << (attempt - 1)
	if delay <= 0 || delay > maxBackoffDelay {
		return maxBackoffDelay
	}
	return delay
}

// sleepWithJitter sleeps for delay/2 plus a random slice of the other half,
// so concurrent workers retrying against the same failing endpoint spread
// out instead of hammering it in lockstep.
func sleepWithJitter(ctx context.Context, delay time.Duration) error {
	if half := delay / 2; half > 0 {
		delay = half + rand.N(half)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
