// Package main provides the figvars CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/figvars/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
