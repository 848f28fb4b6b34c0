// Command muli-sim is a headless driver for the physics engine: it loads a
// YAML scene, steps it, and either prints a summary (run) or streams live
// telemetry over a websocket (serve). SPEC_FULL.md §3 frames this as the
// one place spec.md's CLI non-goal is supplemented, as an outer shell around
// the untouched CORE rather than a core dependency.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
