package main

import (
	"os"

	"github.com/kilianp07/fleetopt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
