package obs

import (
	"context"
	"course-route-service/internal/logging"
	"course-route-service/internal/metrics"
	"time"
)

// Time starts a timer for op and returns a func that logs and records the
// elapsed time. Pass the named error return so failures are labeled.
//
//	defer obs.Time(ctx, "matrix.build")(&err)
func Time(ctx context.Context, op string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		var err error
		if errp != nil {
			err = *errp
		}
		metrics.ObserveOperation(op, dur, err)

		if err != nil {
			logging.Ctx(ctx).Warn().Str("op", op).Dur("dur", dur).Err(err).Msg("operation failed")
			return
		}
		logging.Ctx(ctx).Debug().Str("op", op).Dur("dur", dur).Msg("operation done")
	}
}
