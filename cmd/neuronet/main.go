// Command neuronet is the runnable driver: it loads a network from a TOML
// config file, wires the gridworld reference environment to it, and steps
// the two together at a fixed virtual dt, mirroring
// original_source/NeuroNet/demo_run.py's loop shape (encode -> step ->
// route -> poll -> evaluate -> reward) one tick at a time.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
