package main

import (
	"os"

	"github.com/hbnb/lodging-core/cmd/lodgingctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
