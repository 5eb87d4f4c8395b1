package main

import (
	"os"

	"github.com/omnai-sh/omnai/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
