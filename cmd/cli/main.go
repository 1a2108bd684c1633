// Package main is the entry point for the shipment-cost CLI.
package main

import (
	"os"

	"shipment-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
