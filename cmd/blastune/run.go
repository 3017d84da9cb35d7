package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/engine"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/born-ml/blastune/internal/workload"
	"github.com/born-ml/blastune/tune"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [bench.log]",
		Short: "Execute every call in a bench log with argument and numeric checks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			mode, err := a.cfg.Pointer()
			if err != nil {
				return err
			}
			checks, err := a.cfg.Numerics()
			if err != nil {
				return err
			}
			backend, err := a.openBackend()
			if err != nil {
				return err
			}
			h := engine.New(backend,
				engine.WithPointerMode(mode),
				engine.WithCheckNumerics(checks),
				engine.WithLogger(a.log),
			)
			defer h.Close()

			rng := rand.New(rand.NewPCG(a.cfg.Seed, a.cfg.Seed))
			out := cmd.OutOrStdout()
			var seen []blas.Status
			n := 0
			for c, err := range tune.NewReader(in, a.log).Calls() {
				if err != nil {
					return fmt.Errorf("run: %w", err)
				}
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				n++
				if st := h.Validate(c, blas.ReservedOperands(c)); st != blas.Continue {
					seen = append(seen, st)
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", n, c.Name, st, time.Duration(0))
					continue
				}
				ops, err := workload.Operands(c, rng, workload.DefaultLimit)
				if err != nil {
					a.log.Warn().Err(err).Str("function", c.Name).Msg("cannot allocate operands")
					continue
				}
				start := time.Now()
				st := h.Run(cmd.Context(), c, ops)
				seen = append(seen, st)
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", n, c.Name, st, time.Since(start).Round(time.Microsecond))
			}
			return summarize(out, seen)
		},
	}
	cmd.Flags().Uint64Var(&a.cfg.Seed, "seed", a.cfg.Seed, "operand fill seed")
	return cmd
}

// noBackend lets a handle validate without a kernel backend.
type noBackend struct{}

func (noBackend) Name() string { return "none" }

func (noBackend) Candidates(context.Context, *blas.Call) ([]int, error) {
	return nil, kernel.ErrUnavailable
}

func (noBackend) Execute(context.Context, int, *blas.Call, *blas.Operands) (time.Duration, error) {
	return 0, kernel.ErrUnavailable
}

func (noBackend) Close() error { return nil }
