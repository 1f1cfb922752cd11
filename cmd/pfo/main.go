package main

import (
	"os"

	"github.com/pfo-dev/pfo/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
