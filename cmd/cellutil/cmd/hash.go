package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cell "github.com/tonkit/go-cell"
)

var hashCmd = &cobra.Command{
	Use:     "hash <literal>...",
	Short:   "print the cell hash of each slice literal",
	Example: `cellutil hash 'b{101}' 'x{a0}'`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, lit := range args {
			s, err := cell.ParseSlice(lit)
			if err != nil {
				return err
			}
			h, err := s.Hash()
			if err != nil {
				return fmt.Errorf("hashing %s: %w", lit, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", h, lit)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}
