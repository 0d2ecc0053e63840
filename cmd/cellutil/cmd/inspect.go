package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cell "github.com/tonkit/go-cell"
)

var (
	inspectUint uint
	inspectInt  uint
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <literal>",
	Short:   "show the bit length and canonical form of a slice literal",
	Example: `cellutil inspect --uint 8 'x{ff}'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := cell.ParseSlice(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "bits:    %d\n", s.BitLen())
		fmt.Fprintf(out, "literal: %s\n", s)

		if inspectUint > 0 {
			x, err := s.PreloadBigUint(inspectUint)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "uint%d:  %s\n", inspectUint, x)
		}
		if inspectInt > 0 {
			x, err := s.PreloadBigInt(inspectInt)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "int%d:   %s\n", inspectInt, x)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().UintVar(&inspectUint, "uint", 0, "also decode the leading n bits as unsigned")
	inspectCmd.Flags().UintVar(&inspectInt, "int", 0, "also decode the leading n bits as signed")
}
