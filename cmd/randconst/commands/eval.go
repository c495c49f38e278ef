package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/randconst/generator"
)

// EvalCmd represents the eval command
var EvalCmd = &cobra.Command{
	Use:   "eval <request>",
	Short: "Draw one literal for an inline request",
	Long: `Run the pipeline on one inline request and print the Go expression.

Requests are a type name (u8 i8 u16 i16 u32 i32 u64 i64 u128 i128 usize
isize) or an array [T;N].

Examples:
  randconst eval u64              # uint64(14744487016235212371)
  randconst eval "[u8;16]"        # [16]uint8{...}
  randconst eval --hex i32        # int32(-0x1d3f0c2a)`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	addTargetFlags(EvalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	g, err := generator.New(generator.Options{Config: cfg})
	if err != nil {
		return err
	}

	lit, err := g.Eval(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), lit)
	return nil
}
