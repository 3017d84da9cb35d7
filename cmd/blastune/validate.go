package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/engine"
	"github.com/born-ml/blastune/tune"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [bench.log]",
		Short: "Print the argument verdict of every call in a bench log",
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
			h := engine.New(noBackend{}, engine.WithPointerMode(mode), engine.WithLogger(a.log))

			out := cmd.OutOrStdout()
			var seen []blas.Status
			n := 0
			for c, err := range tune.NewReader(in, a.log).Calls() {
				if err != nil {
					return fmt.Errorf("validate: %w", err)
				}
				n++
				st := h.Validate(c, blas.ReservedOperands(c))
				seen = append(seen, st)
				fmt.Fprintf(out, "%d\t%s\t%s\n", n, c.Name, verdict(st))
			}
			return summarize(out, seen)
		},
	}
}

// verdict renders a validator status the way the bad-arg suites name it.
func verdict(st blas.Status) string {
	switch st.Verdict() {
	case blas.Proceed:
		return "proceed"
	case blas.QuickReturn:
		return "quick return"
	}
	return st.String()
}

// summarize prints one count per distinct outcome in first-seen order.
func summarize(w io.Writer, statuses []blas.Status) error {
	counts := lo.CountValues(statuses)
	parts := lo.Map(lo.Uniq(statuses), func(st blas.Status, _ int) string {
		return fmt.Sprintf("%s=%d", verdict(st), counts[st])
	})
	_, err := fmt.Fprintf(w, "# %d calls: %s\n", len(statuses), strings.Join(parts, ", "))
	return err
}
