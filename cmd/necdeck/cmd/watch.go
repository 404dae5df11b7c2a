package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/fsnotify"
)

var watchCmd = &cobra.Command{
	Use:   "watch <deck|dir>",
	Short: "Re-analyze decks whenever they change",
	Long:  "Watches one deck, or every *.nec file in a directory, and prints a fresh summary after each save.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	w, err := fsnotify.NewWatcher(s.logger, s.cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	defer w.Stop()

	out := cmd.OutOrStdout()
	analyze := func(path string) {
		report, err := analyzeFile(cmd.Context(), cmd, s, path)
		if err != nil && report == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			return
		}
		if jsonOutput {
			_ = writeJSON(out, report)
			return
		}
		fmt.Fprint(out, formatReport(report))
	}

	target := args[0]
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		analyze(target)
	}
	if err := w.Watch(target, analyze); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl-c to stop)\n", target)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-sig:
	case <-cmd.Context().Done():
	}
	return nil
}
