// The main package for the runscout executable.
package main

import (
	"github.com/runcalcs/runscout/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
