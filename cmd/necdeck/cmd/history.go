package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_nec_fidelity/pkg/deck"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show and remove stored reports",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored report (id prefix accepted)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete stored reports (id prefix accepted)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistoryRm,
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
}

func openHistory() (*session, error) {
	s, err := openSession(true)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		s.close()
		return nil, fmt.Errorf("no report database: set store.path or --store")
	}
	return s, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.close()

	summaries, err := s.store.ListReports()
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no stored reports")
		return nil
	}
	return formatSummaries(cmd.OutOrStdout(), summaries)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.close()

	id, err := resolveID(s, args[0])
	if err != nil {
		return err
	}
	report, err := s.store.LoadReport(id)
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("report %s not found", args[0])
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatReport(report))
	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.close()

	for _, arg := range args {
		id, err := resolveID(s, arg)
		if err != nil {
			return err
		}
		if err := s.store.DeleteReport(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", shortID(id))
	}
	return nil
}

// resolveID expands a unique deck ID prefix.
func resolveID(s *session, prefix string) (string, error) {
	summaries, err := s.store.ListReports()
	if err != nil {
		return "", err
	}
	return matchID(summaries, prefix)
}

func matchID(summaries []deck.ReportSummary, prefix string) (string, error) {
	var matches []string
	for _, sum := range summaries {
		if sum.DeckID == prefix {
			return prefix, nil
		}
		if strings.HasPrefix(sum.DeckID, prefix) {
			matches = append(matches, sum.DeckID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no report matches %q", prefix)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%q matches %d reports", prefix, len(matches))
}
