package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	analyzeSave     bool
	analyzeFidelity bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <deck>...",
	Short: "Validate decks and score their round trip",
	Long:  "Parses each deck, reports card errors, fidelity, geometry problems and feed points. Use - to read stdin.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "store reports in the report database")
	analyzeCmd.Flags().BoolVar(&analyzeFidelity, "fidelity", false, "list cards that did not round-trip exactly")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, err := openSession(analyzeSave)
	if err != nil {
		return err
	}
	defer s.close()
	if analyzeSave && s.store == nil {
		return fmt.Errorf("--save needs a report database: set store.path or --store")
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		report, err := analyzeFile(cmd.Context(), cmd, s, path)
		if err != nil {
			if report == nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
		}
		if len(report.Errors) > 0 {
			failed++
		}

		if jsonOutput {
			if err := writeJSON(out, report); err != nil {
				return err
			}
			continue
		}
		fmt.Fprint(out, formatReport(report))
		if analyzeFidelity {
			if err := formatFidelity(out, report.Fidelity.Results); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d decks have card errors", failed, len(args))
	}
	return nil
}
