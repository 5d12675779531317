package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/levelup/internal/screens/curve"
)

func newCurveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print the XP cost of each level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, _ := cmd.Flags().GetInt("levels")
			if levels < 1 || levels > curve.MaxLevel {
				return fmt.Errorf("--levels must be between 1 and %d", curve.MaxLevel)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-7s %12s %14s\n", "Level", "Step cost", "Starts at")
			fmt.Fprintln(out, strings.Repeat("─", 35))
			for lvl := 1; lvl <= levels; lvl++ {
				fmt.Fprintln(out, curve.Row(lvl))
			}
			return nil
		},
	}
	cmd.Flags().IntP("levels", "n", 20, "Number of levels to show")
	return cmd
}
