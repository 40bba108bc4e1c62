package main

import (
	"os"

	"github.com/qtpi-bonding/folio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
