package main

import (
	"os"

	"github.com/pantryhub/pantry/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
