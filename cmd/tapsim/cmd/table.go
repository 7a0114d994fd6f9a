package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the TAP state transition table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-16s %-16s %-16s\n", "State", "TMS=0", "TMS=1")
		for i := 0; i < tap.NumStates; i++ {
			s := tap.State(i)
			fmt.Fprintf(out, "%-16s %-16s %-16s\n", s, tap.NextState(s, false), tap.NextState(s, true))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}
