package main

import (
	"fmt"
	"io"
	"os"

	"github.com/born-ml/blastune/tune"
	"github.com/spf13/cobra"
)

func newTuneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune [bench.log]",
		Short: "Select the fastest GEMM variant for every problem in a bench log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			backend, err := a.openBackend()
			if err != nil {
				return err
			}
			defer backend.Close()

			tuner := tune.New(backend, a.log, tune.Options{
				ColdIters: a.cfg.ColdIters,
				Iters:     a.cfg.Iters,
				Seed:      a.cfg.Seed,
			})
			result, err := tuner.Run(cmd.Context(), tune.NewReader(in, a.log).Calls())
			if err != nil {
				return fmt.Errorf("tune: %w", err)
			}
			return writeResult(cmd, a.cfg.Output, result)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&a.cfg.ColdIters, "cold-iters", a.cfg.ColdIters, "untimed runs per candidate (0 uses the log value)")
	fs.IntVar(&a.cfg.Iters, "iters", a.cfg.Iters, "timed runs per candidate (0 uses the log value)")
	fs.Uint64Var(&a.cfg.Seed, "seed", a.cfg.Seed, "operand fill seed")
	fs.StringVarP(&a.cfg.Output, "output", "o", a.cfg.Output, "tuning log path (default stdout)")
	return cmd
}

func writeResult(cmd *cobra.Command, path string, result *tune.Result) error {
	if path == "" {
		if _, err := result.WriteTo(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("write tuning log: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tuning log: %w", err)
	}
	return saveResult(f, result)
}

// saveResult writes result to wc and closes it. A failed close fails the
// write.
func saveResult(wc io.WriteCloser, result *tune.Result) error {
	if _, err := result.WriteTo(wc); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write tuning log: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close tuning log: %w", err)
	}
	return nil
}
