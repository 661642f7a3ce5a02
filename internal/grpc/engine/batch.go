package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

// ErrBatchOverflow is returned when the pooled sample count of a batch does
// not fit in an int64.
var ErrBatchOverflow = errors.New("pi batch: total samples overflow int64")

// PiBatchResult pools several independent EstimatePi runs.
type PiBatchResult struct {
	Runs   []*pb.PiReply
	Inside int64
	Total  int64
}

// Estimate is 4*Inside/Total over all runs, or 0 when nothing was sampled.
func (r *PiBatchResult) Estimate() float64 {
	if r.Total == 0 {
		return 0
	}
	return 4 * float64(r.Inside) / float64(r.Total)
}

// EstimatePiBatch issues one EstimatePi per entry of samples, at most
// parallel at a time, and pools the counts. The first error cancels the rest.
// Batches whose positive sample counts overflow int64 are rejected before any
// call is made.
func (c *Client) EstimatePiBatch(ctx context.Context, samples []int64, parallel int) (*PiBatchResult, error) {
	if parallel <= 0 {
		parallel = 1
	}
	var want int64
	for _, n := range samples {
		if n <= 0 {
			continue
		}
		if want > math.MaxInt64-n {
			return nil, fmt.Errorf("%w: %d runs", ErrBatchOverflow, len(samples))
		}
		want += n
	}

	runs := make([]*pb.PiReply, len(samples))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, n := range samples {
		g.Go(func() error {
			reply, err := c.EstimatePi(ctx, n)
			if err != nil {
				return err
			}
			runs[i] = reply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &PiBatchResult{Runs: runs}
	for _, r := range runs {
		if res.Total > math.MaxInt64-r.GetTotal() {
			return nil, ErrBatchOverflow
		}
		res.Inside += r.GetInside()
		res.Total += r.GetTotal()
	}
	return res, nil
}
