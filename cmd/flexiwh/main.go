package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/cli"
)

func main() {
	// Recover from panics so a crash still exits with a stack trace instead
	// of a bare runtime abort.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(3)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
