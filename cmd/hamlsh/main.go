// Command hamlsh builds LSH indexes over bit-string point files and answers
// r-near-neighbor queries against them.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
