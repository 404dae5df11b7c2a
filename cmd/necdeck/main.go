// necdeck validates NEC antenna decks, checks their round-trip fidelity and
// extracts wire geometry from the command line.
package main

import (
	"os"

	"github.com/baditaflorin/go_nec_fidelity/cmd/necdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
