package main

import (
	"os"

	"github.com/phantom-spire/core-studio/src/client/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
