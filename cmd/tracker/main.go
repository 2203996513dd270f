// tracker submits terms-and-conditions documents to the analysis service and
// reports the clauses it finds, ranked by risk.
//
// Usage:
//
//	tracker upload FILE [--format=text|table|markdown|json] [--xlsx=PATH]
//	tracker paste [FILE|-]
//	tracker stats
//	tracker serve
//	tracker mcp
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
