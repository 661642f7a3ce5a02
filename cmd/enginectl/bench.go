package main

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	engineclient "github.com/GriffinCanCode/ComputeEngine/internal/grpc/engine"
	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

type benchResult struct {
	duration time.Duration
	err      error
}

type benchReport struct {
	Op         string  `json:"op"`
	Requests   int     `json:"requests"`
	Failed     int     `json:"failed"`
	Throughput float64 `json:"requests_per_second"`
	MeanMs     float64 `json:"mean_ms"`
	P50Ms      float64 `json:"p50_ms"`
	P95Ms      float64 `json:"p95_ms"`
	P99Ms      float64 `json:"p99_ms"`
	MaxMs      float64 `json:"max_ms"`
}

func newBenchCmd(g *globals) *cobra.Command {
	var (
		op       string
		requests int
		workers  int
		samples  int64
		size     int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Load-test one operation and report latency percentiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := benchCall(op, samples, size)
			if err != nil {
				return err
			}
			if requests <= 0 || workers <= 0 {
				return fmt.Errorf("--requests and --workers must be positive")
			}

			client, err := engineclient.New(g.addr, engineclient.Options{Timeout: g.timeout, Compress: g.compress})
			if err != nil {
				return err
			}
			defer client.Close()

			start := time.Now()
			results := runBench(cmd.Context(), client, call, requests, workers)
			report := summarize(op, results, time.Since(start))

			if g.json {
				return g.printJSON(report)
			}
			fmt.Fprintf(g.out, "%s: %d requests, %d failed, %.1f req/s\n",
				report.Op, report.Requests, report.Failed, report.Throughput)
			fmt.Fprintf(g.out, "latency ms: mean=%.3f p50=%.3f p95=%.3f p99=%.3f max=%.3f\n",
				report.MeanMs, report.P50Ms, report.P95Ms, report.P99Ms, report.MaxMs)
			return nil
		},
	}
	cmd.Flags().StringVar(&op, "op", "greet", "operation: greet, pi, matmul or stats")
	cmd.Flags().IntVar(&requests, "requests", 1000, "total requests")
	cmd.Flags().IntVar(&workers, "workers", 10, "concurrent workers")
	cmd.Flags().Int64Var(&samples, "samples", 10_000, "samples per pi request")
	cmd.Flags().IntVar(&size, "size", 32, "square matrix size for matmul, vector length is size*size for stats")
	return cmd
}

type benchFunc func(ctx context.Context, c *engineclient.Client) error

func benchCall(op string, samples int64, size int) (benchFunc, error) {
	switch op {
	case "greet":
		return func(ctx context.Context, c *engineclient.Client) error {
			_, err := c.Greet(ctx, "bench")
			return err
		}, nil
	case "pi":
		return func(ctx context.Context, c *engineclient.Client) error {
			_, err := c.EstimatePi(ctx, samples)
			return err
		}, nil
	case "matmul":
		m := &pb.Matrix{Rows: int32(size), Cols: int32(size), Data: ramp(size * size)}
		return func(ctx context.Context, c *engineclient.Client) error {
			_, err := c.MatMul(ctx, m, m)
			return err
		}, nil
	case "stats":
		data := ramp(size * size)
		return func(ctx context.Context, c *engineclient.Client) error {
			_, err := c.ComputeStats(ctx, data, true)
			return err
		}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", op)
	}
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i%17) - 8
	}
	return out
}

// runBench drains a queue of total requests with a fixed worker pool.
func runBench(ctx context.Context, client *engineclient.Client, call benchFunc, total, workers int) []benchResult {
	queue := make(chan struct{}, total)
	for i := 0; i < total; i++ {
		queue <- struct{}{}
	}
	close(queue)

	results := make([]benchResult, total)
	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range queue {
				start := time.Now()
				err := call(ctx, client)
				results[next.Add(1)-1] = benchResult{duration: time.Since(start), err: err}
			}
		}()
	}
	wg.Wait()
	return results
}

func summarize(op string, results []benchResult, elapsed time.Duration) benchReport {
	report := benchReport{Op: op, Requests: len(results)}
	if len(results) == 0 {
		return report
	}

	ms := make([]float64, len(results))
	for i, r := range results {
		if r.err != nil {
			report.Failed++
		}
		ms[i] = float64(r.duration) / float64(time.Millisecond)
	}
	slices.Sort(ms)

	report.Throughput = float64(len(results)) / elapsed.Seconds()
	report.MeanMs = stat.Mean(ms, nil)
	report.P50Ms = stat.Quantile(0.50, stat.Empirical, ms, nil)
	report.P95Ms = stat.Quantile(0.95, stat.Empirical, ms, nil)
	report.P99Ms = stat.Quantile(0.99, stat.Empirical, ms, nil)
	report.MaxMs = ms[len(ms)-1]
	return report
}
