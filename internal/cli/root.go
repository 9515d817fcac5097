// Package cli wires the command-line surface of the extractor.
package cli

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "eml-extractor",
	Short: "Batch extractor for .eml message files",
	Long: `eml-extractor unpacks folders of .eml files into per-message
directories containing the key headers, the text and HTML bodies, and
every attachment, with collision-safe naming throughout.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	cobra.CheckErr(err)
}
