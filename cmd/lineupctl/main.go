// Command lineupctl performs operator tasks against the lineup database:
// schema migrations, on-demand deadline sweeps, flushing the
// notification outbox and minting access tokens.
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
