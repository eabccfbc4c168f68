// Command pngopt is the CLI driver around the search and recompress
// cores: it owns all file I/O and bitmap decoding, the way the
// teacher's main.go owns os.Open/os.Create and image.Decode while
// leaving the codec itself free of any filesystem dependency.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pngopt:", err)
		os.Exit(1)
	}
}
