// Command choreo plays, scrubs and inspects animation scene files.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/choreo/cmd/choreo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
