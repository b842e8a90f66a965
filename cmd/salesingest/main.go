// Package main is the entry point for the salesingest binary.
package main

import (
	"os"

	"github.com/rpattn/salesingest/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
