package cron

import "context"

const (
	defaultBatchSize = 500
	maxBatchesPerRun = 200
)

// batchStep processes at most limit rows and reports how many it touched.
type batchStep func(ctx context.Context, limit int) (int64, error)

// drain repeats step until a batch comes back short, the context ends, or
// maxBatchesPerRun is reached. The next cycle picks up whatever is left.
func drain(ctx context.Context, limit int, step batchStep) (int64, error) {
	if limit <= 0 {
		limit = defaultBatchSize
	}
	var total int64
	for i := 0; i < maxBatchesPerRun; i++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := step(ctx, limit)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(limit) {
			break
		}
	}
	return total, nil
}
