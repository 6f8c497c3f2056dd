// Command notehost runs the NoteLogger plugin in a headless host.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "notehost:", err)
		os.Exit(1)
	}
}
