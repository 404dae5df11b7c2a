package cmd

import (
	"github.com/spf13/cobra"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <deck>",
	Short: "Print the resolved SY symbol table",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func runSymbols(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.close()

	text, err := readDeck(cmd, args[0])
	if err != nil {
		return err
	}
	lines, err := s.analyzer.SplitLines(cmd.Context(), text)
	if err != nil {
		return err
	}
	table := s.analyzer.ResolveSymbols(lines)

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), table)
	}
	formatSymbols(cmd.OutOrStdout(), table)
	return nil
}
