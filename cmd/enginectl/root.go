package main

import (
	"context"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/metadata"

	enginegrpc "github.com/GriffinCanCode/ComputeEngine/internal/grpc"
	engineclient "github.com/GriffinCanCode/ComputeEngine/internal/grpc/engine"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	addr     string
	timeout  time.Duration
	json     bool
	compress bool
	out      io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	g := &globals{out: out}

	root := &cobra.Command{
		Use:           "enginectl",
		Short:         "Call the compute engine",
		Long:          `enginectl sends Greet, EstimatePi, MatMul and ComputeStats requests to an engine server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&g.addr, "addr", "localhost:9101", "engine gRPC address")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 10*time.Second, "per-request timeout")
	root.PersistentFlags().BoolVar(&g.json, "json", false, "print replies as JSON")
	root.PersistentFlags().BoolVar(&g.compress, "zstd", false, "compress requests with zstd")

	root.AddCommand(
		newGreetCmd(g),
		newPiCmd(g),
		newMatMulCmd(g),
		newStatsCmd(g),
		newBenchCmd(g),
	)
	return root
}

// dial opens a client and a request context tagged with a fresh request id.
func (g *globals) dial(parent context.Context) (*engineclient.Client, context.Context, context.CancelFunc, error) {
	client, err := engineclient.New(g.addr, engineclient.Options{
		Timeout:  g.timeout,
		Compress: g.compress,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(parent, g.timeout)
	ctx = metadata.AppendToOutgoingContext(ctx, enginegrpc.MetadataRequestID, uuid.NewString())
	return client, ctx, func() {
		cancel()
		_ = client.Close()
	}, nil
}

func (g *globals) printJSON(v interface{}) error {
	b, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = g.out.Write(append(b, '\n'))
	return err
}
