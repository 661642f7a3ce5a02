package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	pb "github.com/GriffinCanCode/ComputeEngine/proto/engine"
)

func newGreetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "greet [name]",
		Short: "Send a Greet request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "World"
			if len(args) == 1 {
				name = args[0]
			}

			client, ctx, done, err := g.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			msg, err := client.Greet(ctx, name)
			if err != nil {
				return err
			}
			if g.json {
				return g.printJSON(map[string]string{"message": msg})
			}
			fmt.Fprintln(g.out, msg)
			return nil
		},
	}
}

type piOutput struct {
	Pi      float64 `json:"pi"`
	Inside  int64   `json:"inside"`
	Total   int64   `json:"total"`
	Seed    int64   `json:"seed,omitempty"`
	Runs    int     `json:"runs,omitempty"`
	Elapsed string  `json:"elapsed"`
}

func newPiCmd(g *globals) *cobra.Command {
	var runs, parallel int

	cmd := &cobra.Command{
		Use:   "pi [samples]",
		Short: "Estimate pi with a Monte Carlo run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples := int64(1_000_000)
			if len(args) == 1 {
				n, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid samples %q: %w", args[0], err)
				}
				samples = n
			}

			client, ctx, done, err := g.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			start := time.Now()
			var out piOutput
			if runs > 1 {
				batch := make([]int64, runs)
				for i := range batch {
					batch[i] = samples
				}
				res, err := client.EstimatePiBatch(ctx, batch, parallel)
				if err != nil {
					return err
				}
				out = piOutput{Pi: res.Estimate(), Inside: res.Inside, Total: res.Total, Runs: runs}
			} else {
				reply, err := client.EstimatePi(ctx, samples)
				if err != nil {
					return err
				}
				out = piOutput{Pi: reply.GetPiEstimate(), Inside: reply.GetInside(), Total: reply.GetTotal(), Seed: reply.GetSeed()}
			}
			out.Elapsed = time.Since(start).Round(time.Microsecond).String()

			if g.json {
				return g.printJSON(out)
			}
			if out.Runs > 0 {
				fmt.Fprintf(g.out, "π ≈ %v  (inside=%d, total=%d, runs=%d, elapsed=%s)\n",
					out.Pi, out.Inside, out.Total, out.Runs, out.Elapsed)
				return nil
			}
			fmt.Fprintf(g.out, "π ≈ %v  (inside=%d, total=%d, seed=%d, elapsed=%s)\n",
				out.Pi, out.Inside, out.Total, out.Seed, out.Elapsed)
			return nil
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 1, "independent runs to pool")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs when --runs > 1")
	return cmd
}

type matrixOutput struct {
	Rows int32     `json:"rows"`
	Cols int32     `json:"cols"`
	Data []float64 `json:"data"`
}

func newMatMulCmd(g *globals) *cobra.Command {
	var aSpec, bSpec string

	cmd := &cobra.Command{
		Use:   "matmul --a RxC:v,v,... --b RxC:v,v,...",
		Short: "Multiply two row-major matrices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseMatrix(aSpec)
			if err != nil {
				return fmt.Errorf("--a: %w", err)
			}
			b, err := parseMatrix(bSpec)
			if err != nil {
				return fmt.Errorf("--b: %w", err)
			}

			client, ctx, done, err := g.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			c, err := client.MatMul(ctx, a, b)
			if err != nil {
				return err
			}
			if g.json {
				data := c.GetData()
				if data == nil {
					data = []float64{}
				}
				return g.printJSON(map[string]matrixOutput{"c": {Rows: c.GetRows(), Cols: c.GetCols(), Data: data}})
			}
			fmt.Fprintln(g.out, "C = A x B =")
			fmt.Fprint(g.out, formatMatrix(c))
			return nil
		},
	}
	cmd.Flags().StringVar(&aSpec, "a", "", "left operand, e.g. 2x3:1,2,3,4,5,6")
	cmd.Flags().StringVar(&bSpec, "b", "", "right operand, e.g. 3x2:7,8,9,10,11,12")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	return cmd
}

type statsOutput struct {
	Kind     string   `json:"kind"`
	Count    int64    `json:"count"`
	Sum      float64  `json:"sum"`
	Mean     float64  `json:"mean"`
	Variance float64  `json:"variance"`
	Stddev   float64  `json:"stddev"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
}

func newStatsCmd(g *globals) *cobra.Command {
	var population bool

	cmd := &cobra.Command{
		Use:   "stats [value...]",
		Short: "Summarize a vector of numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseValues(args)
			if err != nil {
				return err
			}

			client, ctx, done, err := g.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			r, err := client.ComputeStats(ctx, data, !population)
			if err != nil {
				return err
			}

			kind := "Sample"
			if population {
				kind = "Population"
			}
			if g.json {
				return g.printJSON(statsOutput{
					Kind: strings.ToLower(kind), Count: r.GetCount(), Sum: r.GetSum(), Mean: r.GetMean(),
					Variance: r.GetVariance(), Stddev: r.GetStddev(),
					Min: finite(r.GetMin()), Max: finite(r.GetMax()),
				})
			}
			fmt.Fprintf(g.out, "%s stats:\n", kind)
			fmt.Fprintf(g.out, "count: %d\nsum: %v\nmean: %v\nvariance: %v\nstddev: %v\nmin: %v\nmax: %v\n",
				r.GetCount(), r.GetSum(), r.GetMean(), r.GetVariance(), r.GetStddev(), r.GetMin(), r.GetMax())
			return nil
		},
	}
	cmd.Flags().BoolVar(&population, "population", false, "population variance (divide by n)")
	return cmd
}

func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

// formatMatrix prints "RxC:" and then one space-separated line per row.
func formatMatrix(m *pb.Matrix) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d:\n", m.GetRows(), m.GetCols())
	rows, cols := int(m.GetRows()), int(m.GetCols())
	data := m.GetData()
	if rows*cols != len(data) {
		return sb.String()
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(data[r*cols+c], 'g', -1, 64))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
