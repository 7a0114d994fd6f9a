package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

var pathCmd = &cobra.Command{
	Use:   "path FROM TO",
	Short: "Show the shortest TMS sequence between two states",
	Long: `Show the shortest TMS sequence between two states. Test-Logic-Reset
cannot be reached with TMS and needs TRST or a controller reset.`,
	Args: cobra.ExactArgs(2),
	RunE: runPath,
}

func init() {
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) error {
	from, err := tap.ParseState(args[0])
	if err != nil {
		return err
	}
	to, err := tap.ParseState(args[1])
	if err != nil {
		return err
	}
	seq, err := tap.Path(from, to)
	if err != nil {
		return err
	}

	tms := make([]string, len(seq.TMS))
	for i, bit := range seq.TMS {
		tms[i] = "0"
		if bit {
			tms[i] = "1"
		}
	}
	states := make([]string, len(seq.States))
	for i, s := range seq.States {
		states[i] = s.String()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "TMS:    %s\n", strings.Join(tms, " "))
	fmt.Fprintf(out, "Cycles: %d\n", len(seq.TMS))
	fmt.Fprintf(out, "States: %s\n", strings.Join(states, " -> "))
	return nil
}
