package main

import (
	"fmt"
	"io"
	"os"

	"github.com/born-ml/blastune/backend/cpu"
	"github.com/born-ml/blastune/backend/webgpu"
	"github.com/born-ml/blastune/internal/config"
	"github.com/born-ml/blastune/internal/logging"
	"github.com/born-ml/blastune/tune"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app carries the configuration shared by every subcommand.
type app struct {
	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	root := &cobra.Command{
		Use:           "blastune",
		Short:         "Tune, validate and run BLAS calls from bench logs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			log, err := logging.New(cmd.ErrOrStderr(), logging.Config{
				Level:  a.cfg.LogLevel,
				Format: a.cfg.LogFormat,
			})
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	bindShared(root.PersistentFlags(), &a.cfg)

	root.AddCommand(
		newTuneCmd(a),
		newValidateCmd(a),
		newRunCmd(a),
		newInfoCmd(a),
		newVersionCmd(),
	)
	return root
}

// bindShared registers the flags every subcommand understands.
func bindShared(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "kernel backend: cpu or webgpu")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "CPU backend worker count")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	fs.StringVar(&cfg.PointerMode, "pointer-mode", cfg.PointerMode, "scalar pointer mode: host or device")
	fs.StringVar(&cfg.CheckNumerics, "check-numerics", cfg.CheckNumerics, "numeric checks: off or info|warn|fail")
}

// openBackend constructs the configured backend.
func (a *app) openBackend() (tune.Backend, error) {
	switch a.cfg.Backend {
	case config.BackendWebGPU:
		gpu, err := webgpu.New(webgpu.Config{Log: a.log})
		if err != nil {
			return nil, err
		}
		return gpu, nil
	default:
		return cpu.New(cpu.Config{Workers: a.cfg.Workers, Log: a.log}), nil
	}
}

// openInput opens the bench log named by args, or stdin for none or "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open bench log: %w", err)
	}
	return f, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blastune %s\n", version)
		},
	}
}
