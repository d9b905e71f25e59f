// Command rtree inspects render trees described by YAML scene files.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/rendertree/cmd/rtree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
