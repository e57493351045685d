package main

import (
	"os"

	"github.com/en9inerd/tagbot/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
