package schema

import (
	"context"
	"time"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/errors"
)

// ErrReadinessTimeout indicates the poll attempt budget was exhausted without
// the entity reporting available.
var ErrReadinessTimeout = errors.New("readiness polling timed out")

// SleepFunc waits for d or until ctx is done. Tests substitute an
// instantaneous clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	}
}

// Poll is a fixed-interval bounded readiness poll.
type Poll struct {
	Interval time.Duration
	Attempts int

	Sleep SleepFunc
}

// WaitAvailable re-invokes fetch every interval until it reports
// [appwrite.StatusAvailable], the attempt budget runs out
// (ErrReadinessTimeout), or fetch fails. An empty status means the entity was
// not listed yet and polling continues.
func (p Poll) WaitAvailable(ctx context.Context, fetch func(context.Context) (string, error)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempt := 0; attempt < p.Attempts; attempt++ {
		status, err := fetch(ctx)
		if err != nil {
			return err
		}

		if status == appwrite.StatusAvailable {
			return nil
		}

		err = sleep(ctx, p.Interval)
		if err != nil {
			return err
		}
	}

	return ErrReadinessTimeout
}
