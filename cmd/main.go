package main

// Main entry point of the application
// Executes the Cobra commands and maps errors to exit code 1

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"elpris/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
