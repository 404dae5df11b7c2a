package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var geometryCmd = &cobra.Command{
	Use:   "geometry <deck>",
	Short: "Print the wire segments of the GW cards",
	Args:  cobra.ExactArgs(1),
	RunE:  runGeometry,
}

func runGeometry(cmd *cobra.Command, args []string) error {
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
	segments, geomErrs := s.analyzer.ExtractGeometry(cards)

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"segments":    segments,
			"errors":      geomErrs,
			"feed_points": s.analyzer.FeedPoints(cards),
		})
	}
	if err := formatSegments(cmd.OutOrStdout(), segments); err != nil {
		return err
	}
	for _, e := range geomErrs {
		fmt.Fprintln(cmd.ErrOrStderr(), e)
	}
	return nil
}
