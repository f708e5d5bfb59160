// Command squish compresses and decompresses streams while reporting block progress.
package main

import (
	"os"

	"github.com/meigma/squish/cmd/squish/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
