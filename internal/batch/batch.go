// Package batch drives extraction of every .eml file in an input
// directory into per-message output directories.
package batch

import (
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/felo/eml-extractor/internal/catalog"
	"github.com/felo/eml-extractor/internal/extractor"
	"github.com/felo/eml-extractor/internal/naming"
	"github.com/felo/eml-extractor/internal/scanner"
)

// Status is the outcome for one processed file
type Status int

const (
	StatusExtracted Status = iota
	StatusFailed
	StatusStopped
)

// FileResult reports the outcome of one file in a batch
type FileResult struct {
	File      string
	OutputDir string
	Status    Status
	Result    *extractor.ExtractionResult
	Err       error
}

// Stats contains totals for a completed (or stopped) batch run
type Stats struct {
	Total      int
	Successful int
	Failed     int
	Stopped    int
}

// Runner processes all .eml files of one input directory. Output
// directory names are reserved sequentially before extraction fans out
// to a worker pool, so collision resolution never races: resolving a
// name consults both the set of names claimed in this run and the
// directories already on disk.
type Runner struct {
	scanner     *scanner.Scanner
	inputPath   string
	outputBase  string
	catalog     *catalog.DB
	verbose     bool
	concurrency int
	stop        atomic.Bool
}

// NewRunner creates a runner for the given input and output directories
func NewRunner(inputPath, outputBase string) *Runner {
	return &Runner{
		scanner:     scanner.NewScanner(inputPath),
		inputPath:   inputPath,
		outputBase:  outputBase,
		concurrency: runtime.NumCPU() * 2,
	}
}

// WithCatalog makes the runner record every processed file
func (r *Runner) WithCatalog(c *catalog.DB) *Runner {
	r.catalog = c
	return r
}

// WithConcurrency sets the number of concurrent workers
func (r *Runner) WithConcurrency(workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	r.concurrency = workers
	return r
}

// WithVerbose enables per-file logging
func (r *Runner) WithVerbose(verbose bool) *Runner {
	r.verbose = verbose
	return r
}

// Stop requests an abort. Files not yet started are reported as
// stopped; directories of already-completed messages are left intact.
func (r *Runner) Stop() {
	r.stop.Store(true)
}

type job struct {
	file      string
	outputDir string
}

// Run processes the whole batch without progress reporting
func (r *Runner) Run() (*Stats, error) {
	return r.RunWithProgress(nil)
}

// RunWithProgress processes the whole batch, invoking progress after
// each file with the running position and that file's result. Per-file
// failures are counted, never escalated; the returned error covers
// batch-level problems only (unreadable input directory, output base
// creation failure).
func (r *Runner) RunWithProgress(progress func(current, total int, res FileResult)) (*Stats, error) {
	files, err := r.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan for files: %w", err)
	}

	stats := &Stats{Total: len(files)}
	if len(files) == 0 {
		return stats, nil
	}

	if err := os.MkdirAll(r.outputBase, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output base directory: %w", err)
	}

	if r.verbose {
		log.Printf("Found %d .eml files to process with %d workers\n", stats.Total, r.concurrency)
	}

	jobs := r.reserveOutputDirs(files)

	jobChan := make(chan job, len(jobs))
	resultChan := make(chan FileResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go r.worker(&wg, jobChan, resultChan)
	}

	for _, j := range jobs {
		jobChan <- j
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	processed := 0
	for res := range resultChan {
		processed++
		if progress != nil {
			progress(processed, stats.Total, res)
		}

		switch res.Status {
		case StatusExtracted:
			stats.Successful++
		case StatusFailed:
			stats.Failed++
		case StatusStopped:
			stats.Stopped++
		}
	}

	if r.verbose {
		log.Printf("Batch complete: %d total, %d successful, %d failed\n",
			stats.Total, stats.Successful, stats.Failed)
	}

	return stats, nil
}

// reserveOutputDirs resolves a collision-free output directory name for
// every file, sequentially. Names claimed here are not yet created on
// disk; the claimed set bridges the gap until a worker creates them.
func (r *Runner) reserveOutputDirs(files []string) []job {
	claimed := make(map[string]bool)
	exists := func(name string) bool {
		if claimed[name] {
			return true
		}
		_, err := os.Stat(filepath.Join(r.outputBase, name))
		return err == nil
	}

	jobs := make([]job, 0, len(files))
	for _, file := range files {
		base := naming.SanitizeFolderName(file)
		name := naming.ResolveFolderName(base, exists)
		claimed[name] = true
		jobs = append(jobs, job{
			file:      file,
			outputDir: filepath.Join(r.outputBase, name),
		})
	}
	return jobs
}

// worker processes jobs until the job channel closes
func (r *Runner) worker(wg *sync.WaitGroup, jobChan <-chan job, resultChan chan<- FileResult) {
	defer wg.Done()

	for j := range jobChan {
		if r.stop.Load() {
			resultChan <- FileResult{File: j.file, OutputDir: j.outputDir, Status: StatusStopped}
			continue
		}
		resultChan <- r.processJob(j)
	}
}

// processJob extracts one file and records the outcome in the catalog
func (r *Runner) processJob(j job) FileResult {
	res := FileResult{File: j.file, OutputDir: j.outputDir}

	result, err := extractor.ExtractFile(filepath.Join(r.inputPath, j.file), j.outputDir)
	if err != nil {
		if r.verbose {
			log.Printf("Error extracting %s: %v\n", j.file, err)
		}
		res.Status = StatusFailed
		res.Err = err
		r.record(res)
		return res
	}

	res.Status = StatusExtracted
	res.Result = result
	r.record(res)
	return res
}

// record inserts one file outcome into the catalog, if one is attached
func (r *Runner) record(res FileResult) {
	if r.catalog == nil {
		return
	}

	entry := &catalog.Extraction{
		FilePath:  filepath.Join(r.inputPath, res.File),
		OutputDir: res.OutputDir,
		Status:    catalog.StatusFailed,
	}

	if res.Err != nil {
		entry.Error = res.Err.Error()
	}

	if res.Result != nil {
		entry.Status = catalog.StatusExtracted
		entry.Subject = decodeMIMEWord(res.Result.Header("Subject"))
		entry.Sender = res.Result.Header("From")
		entry.Recipients = res.Result.Header("To")
		entry.CC = res.Result.Header("Cc")
		entry.Date = res.Result.Header("Date")
		entry.MessageID = res.Result.Header("Message-ID")
		entry.HasPlainBody = res.Result.HasPlainBody
		entry.HasHTMLBody = res.Result.HasHTMLBody
		entry.AttachmentCount = res.Result.AttachmentCount
	}

	if _, err := r.catalog.InsertExtraction(entry); err != nil {
		log.Printf("Error recording extraction for %s: %v\n", res.File, err)
		// Continue even if the catalog insert fails
	}
}

// decodeMIMEWord decodes MIME-encoded words (RFC 2047) for display.
// Example: =?UTF-8?Q?Invitaci=C3=B3n?= -> Invitación
func decodeMIMEWord(s string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(s)
	if err != nil {
		// If decoding fails, return original string
		return s
	}
	return decoded
}
