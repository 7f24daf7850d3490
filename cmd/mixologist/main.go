package main

import (
	"os"

	"cocktail-generator/cmd/mixologist/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
