package main

import (
	"os"

	"github.com/hadoku/trader/cmd/trader/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
