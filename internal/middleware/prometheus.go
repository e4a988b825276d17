package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/router"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		startTime := xcontext.StartTime(ctx)

		req := xcontext.HTTPRequest(ctx)
		code := 0
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				code = int(errx.Code)
			} else {
				code = -1
			}
		}
		path := req.URL.Path

		common.IncCounter(common.HTTPRequestTotal, path, fmt.Sprint(code))
		if histogram, ok := common.PromHistograms[common.HTTPRequestDurationSeconds]; ok {
			histogram.WithLabelValues(path, fmt.Sprint(code)).Observe(time.Since(startTime).Seconds())
		}
	}
}
