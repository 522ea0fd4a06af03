// Command architect is the thin CLI client for the architect-engine
// daemon (spec §6.2). It does no terminal rendering beyond plain
// tab-separated output — see SPEC_FULL.md's "Thin CLI" supplement.
package main

import (
	"fmt"
	"os"

	"github.com/architect-platform/architect-engine/internal/cli"
)

var (
	version = "dev"
)

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
