package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/jtag"
	"github.com/OpenTraceLab/OpenTraceTAP/pkg/script"
	"github.com/OpenTraceLab/OpenTraceTAP/pkg/trace"
)

var (
	vcdPath  string
	idValue  string
	idOpcode uint64
)

var runCmd = &cobra.Command{
	Use:   "run SCRIPT",
	Short: "Run a stimulus script against the simulated TAP",
	Long: `Run a stimulus script against the simulated TAP. Each line is one
statement:

  reset | trst | tms BITS | goto STATE | shift BITS | idle N
  scanir BITS | scandr BITS
  expect state STATE | ir VALUE | tdo BIT | pulse NAME | dr BITS

The IDCODE register answers on --id-opcode; every other instruction selects
BYPASS.`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	runCmd.Flags().StringVar(&vcdPath, "vcd", "", "write a VCD waveform to this file")
	addIDCodeFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addIDCodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&idValue, "id", "0x4BA00477", "IDCODE value the device reports")
	cmd.Flags().Uint64Var(&idOpcode, "id-opcode", 1, "instruction that selects IDCODE")
}

func parseIDValue() (uint32, error) {
	v, err := strconv.ParseUint(idValue, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid --id %q: %w", idValue, err)
	}
	return uint32(v), nil
}

func runScript(cmd *cobra.Command, args []string) error {
	prog, err := script.ParseFile(args[0])
	if err != nil {
		return err
	}
	dev, err := newDevice(cmd)
	if err != nil {
		return err
	}
	id, err := parseIDValue()
	if err != nil {
		return err
	}

	if vcdPath != "" {
		f, err := os.Create(vcdPath)
		if err != nil {
			return fmt.Errorf("failed to create VCD: %w", err)
		}
		defer f.Close()
		vcd, err := trace.NewVCD(f, dev.Config().IRWidth)
		if err != nil {
			return err
		}
		dev.Controller().SetTickHook(vcd.Observe)
		defer func() {
			if err := vcd.Close(); err != nil {
				logger.Error("VCD write failed", "path", vcdPath, "err", err)
			}
			logger.Debug("VCD written", "path", vcdPath, "ticks", vcd.Ticks())
		}()
	}

	runner := script.NewRunner(dev)
	runner.Pins().Select(idOpcode, jtag.NewIDCodeRegister(id))
	runner.OnStatement = func(pos lexer.Position, text string) {
		logger.Debug("statement", "pos", pos.String(), "text", text)
	}

	if err := runner.Run(cmd.Context(), prog); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctrl := dev.Controller()
	state, ir, tdo := ctrl.Snapshot()
	fmt.Fprintf(out, "%s: %d statements passed\n", prog.Name, prog.Len())
	fmt.Fprintf(out, "  Ticks: %d\n", ctrl.Ticks())
	fmt.Fprintf(out, "  State: %s\n", state)
	fmt.Fprintf(out, "  IR:    %s\n", formatIR(ir, ctrl.IRWidth()))
	fmt.Fprintf(out, "  TDO:   %d\n", boolInt(tdo))
	if dr := runner.LastDR(); len(dr) > 0 {
		fmt.Fprintf(out, "  DR:    0x%X (%d bits)\n", jtag.BitsToUint64(dr), len(dr))
	}
	return nil
}

func formatIR(v uint64, width int) string {
	return fmt.Sprintf("%0*b", width, v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
