package commands

import (
	"math/big"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/randconst/generator"
	"github.com/teranos/randconst/typespec"
)

// TypesCmd represents the types command
var TypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the supported integer types",
	Long: `List the request vocabulary for the target architecture: the Go type each
name renders as, its width and its range.

128-bit types have no Go type; they render as untyped constants.`,
	RunE: runTypes,
}

func init() {
	TypesCmd.Flags().String("goarch", "", "Target architecture (default: target.goarch, $GOARCH, host)")
}

func runTypes(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	g, err := generator.New(generator.Options{Config: cfg})
	if err != nil {
		return err
	}
	reg := g.Registry()

	data := pterm.TableData{{"Request", "Go type", "Bytes", "Min", "Max"}}
	for _, t := range reg.All() {
		goType := t.GoType
		if !t.HasGoType() {
			goType = "untyped const"
		}
		lo, hi := bounds(t)
		data = append(data, []string{t.Name, goType, strconv.Itoa(t.Width), lo.String(), hi.String()})
	}

	pterm.Fprintln(cmd.OutOrStdout(), pterm.Info.Sprintf("GOARCH=%s, pointer width %d bytes", reg.GOARCH(), reg.PointerWidth()))
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
}

// bounds returns the value range of t.
func bounds(t typespec.TypeSpec) (*big.Int, *big.Int) {
	one := big.NewInt(1)
	if !t.Signed {
		hi := new(big.Int).Lsh(one, uint(t.Bits()))
		return new(big.Int), hi.Sub(hi, one)
	}
	half := new(big.Int).Lsh(one, uint(t.Bits()-1))
	lo := new(big.Int).Neg(half)
	return lo, half.Sub(half, one)
}
