package main

import (
	"fmt"
	"strings"

	"github.com/born-ml/blastune/backend/cpu"
	"github.com/born-ml/blastune/internal/dispatch"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the host features and the kernels of the selected backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := a.openBackend()
			if err != nil {
				return err
			}
			defer backend.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend:   %s\n", backend.Name())
			fmt.Fprintf(out, "cpu:       %s\n", cpu.DetectFeatures())

			type named interface{ VariantNames() []string }
			if n, ok := backend.(named); ok {
				names := n.VariantNames()
				fmt.Fprintf(out, "variants:  %d (%s)\n", len(names), strings.Join(names, ", "))
			}
			type keyed interface{ GemmKeys() []dispatch.Key }
			if k, ok := backend.(keyed); ok {
				keys := lo.Map(k.GemmKeys(), func(key dispatch.Key, _ int) string {
					return "[" + key.String() + "]"
				})
				fmt.Fprintf(out, "gemm:      %s\n", strings.Join(keys, " "))
			}
			return nil
		},
	}
}
