// Command hioload-transport drives the stream core from the command line:
// batch failure fan-out and stream teardown scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/momentics/hioload-transport/cmd/hioload-transport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
