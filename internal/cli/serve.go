package cli

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/felo/eml-extractor/internal/catalog"
	"github.com/felo/eml-extractor/internal/config"
	"github.com/felo/eml-extractor/internal/handlers"
	"github.com/felo/eml-extractor/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction web interface",
	Long: `Starts a local web server for browsing the extraction catalog,
searching past extractions, and running new batches with live progress.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost      string
	servePort      string
	serveInput     string
	serveOutput    string
	serveDBPath    string
	serveNoBrowser bool
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "address to listen on")
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on")
	serveCmd.Flags().StringVar(&serveInput, "input", "", "default input folder for runs")
	serveCmd.Flags().StringVar(&serveOutput, "output", "", "default output folder for runs")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "catalog database path")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "do not open the browser on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if serveInput != "" {
		cfg.InputPath = serveInput
	}
	if serveOutput != "" {
		cfg.OutputBase = serveOutput
	}
	if serveDBPath != "" {
		cfg.DBPath = serveDBPath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return err
	}

	db, err := catalog.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Printf("Catalog opened at: %s", cfg.DBPath)

	// Shutdown signal channel, shared with the /shutdown endpoint
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	h := handlers.New(db, cfg)
	h.SetShutdownChannel(sigChan)
	if err := h.LoadTemplates(web.Assets); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", h.Index)
	r.Get("/search", h.Search)
	r.Get("/extraction/{id}", h.ViewExtraction)
	r.Get("/extraction/{id}/attachment/{name}", h.DownloadAttachment)
	r.Get("/run", h.RunPage)
	r.Post("/run", h.StartRun)
	r.Post("/run/stop", h.StopRun)
	r.Get("/run/progress", h.RunProgressSSE)
	r.Post("/shutdown", h.Shutdown)

	staticFS, err := fs.Sub(web.Assets, "static")
	if err != nil {
		return err
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // SSE connections stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", cfg.URL())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if !serveNoBrowser {
		time.Sleep(500 * time.Millisecond) // give the listener time to bind
		if err := openBrowser(cfg.URL()); err != nil {
			log.Printf("Failed to open browser: %v", err)
			log.Printf("Open %s manually", cfg.URL())
		}
	}

	<-sigChan
	log.Println("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

// openBrowser opens the default browser to the specified URL
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
