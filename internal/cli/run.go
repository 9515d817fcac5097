package cli

import (
	"fmt"
	"os"

	"github.com/felo/eml-extractor/internal/batch"
	"github.com/felo/eml-extractor/internal/catalog"
	"github.com/felo/eml-extractor/internal/config"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run inputFolder [outputFolder]",
	Short: "Extract every .eml file in a folder",
	Long: `Scans inputFolder for .eml files and unpacks each message into its
own directory under outputFolder (default "` + config.DefaultOutputBase + `").
A file that fails to parse is reported and skipped; the rest of the
batch still runs.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExtraction,
}

var (
	runCatalogPath string
	runJobs        int
	runVerbose     bool
)

func init() {
	runCmd.Flags().StringVar(&runCatalogPath, "catalog", "",
		"record results in a catalog database at this path")
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", 4,
		"number of messages extracted in parallel")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false,
		"log per-part detail while extracting")
	rootCmd.AddCommand(runCmd)
}

func runExtraction(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputBase := config.DefaultOutputBase
	if len(args) == 2 {
		outputBase = args[1]
	}

	info, err := os.Stat(inputPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("input folder %q does not exist", inputPath)
	}

	runner := batch.NewRunner(inputPath, outputBase).
		WithConcurrency(runJobs).
		WithVerbose(runVerbose)

	if runCatalogPath != "" {
		db, err := catalog.Open(runCatalogPath)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer db.Close()
		runner = runner.WithCatalog(db)
	}

	fmt.Printf("Extracting .eml files from %s into %s\n\n", inputPath, outputBase)

	stats, err := runner.RunWithProgress(func(current, total int, res batch.FileResult) {
		switch res.Status {
		case batch.StatusExtracted:
			fmt.Printf("[%d/%d] %s -> %s\n", current, total, res.File, res.OutputDir)
		case batch.StatusFailed:
			fmt.Printf("[%d/%d] %s FAILED: %v\n", current, total, res.File, res.Err)
		}
	})
	if err != nil {
		return err
	}

	if stats.Total == 0 {
		fmt.Printf("No .eml files found in %s\n", inputPath)
		return nil
	}

	fmt.Printf("\nDone: %d processed, %d successful, %d failed\n",
		stats.Total, stats.Successful, stats.Failed)
	return nil
}
