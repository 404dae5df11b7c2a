package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <deck>",
	Short: "Print the deck rebuilt from its parsed cards",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
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
	cards, _ := s.analyzer.Parse(lines, s.analyzer.ResolveSymbols(lines))
	rebuilt := s.analyzer.Convert(cards)

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), rebuilt)
	}
	if len(rebuilt) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(rebuilt, "\n"))
	}
	return nil
}
