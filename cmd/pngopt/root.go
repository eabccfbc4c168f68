package main

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pngopt",
	Short: "Offline PNG recompressor and optimizer",
	Long: `pngopt searches a space of PNG color modes, filter strategies, and
deflate levels and emits whichever fully-valid encoding comes out
smallest, either from a raw bitmap (encode) or an existing PNG
(recompress).`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable per-candidate reporting")
}
