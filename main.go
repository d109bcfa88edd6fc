// Package main is the entry point for the protosy plugin host.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/protosy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
