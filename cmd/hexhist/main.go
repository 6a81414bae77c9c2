package main

import (
	"fmt"
	"os"
)

// Set via ldflags
var Version = "dev"

func main() {
	if err := newRootCommand(Version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
