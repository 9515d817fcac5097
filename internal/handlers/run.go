package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/felo/eml-extractor/internal/batch"
)

// RunProgress holds the current batch run state
type RunProgress struct {
	mu              sync.RWMutex
	isRunning       bool
	runner          *batch.Runner
	current         int
	total           int
	currentFile     string
	successful      int
	failed          int
	completed       bool
	err             error
	lastUpdate      time.Time
	progressClients []chan ProgressEvent
}

// ProgressEvent represents a progress update event
type ProgressEvent struct {
	Type string      `json:"type"` // "progress", "complete", "error"
	Data interface{} `json:"data"`
}

var (
	runProgress = &RunProgress{
		progressClients: make([]chan ProgressEvent, 0),
	}
)

// RunPage displays the extraction run page
func (h *Handlers) RunPage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetStats()
	if err != nil {
		log.Printf("Error getting stats: %v", err)
		stats = nil
	}

	data := map[string]interface{}{
		"PageTitle":  "Run Extraction - EML Extractor",
		"InputPath":  h.cfg.InputPath,
		"OutputBase": h.cfg.OutputBase,
		"Stats":      stats,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "run.html", data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// StartRun starts a batch extraction in the background
func (h *Handlers) StartRun(w http.ResponseWriter, r *http.Request) {
	inputPath := r.FormValue("input")
	if inputPath == "" {
		inputPath = h.cfg.InputPath
	}
	outputBase := r.FormValue("output")
	if outputBase == "" {
		outputBase = h.cfg.OutputBase
	}

	runProgress.mu.Lock()
	if runProgress.isRunning {
		runProgress.mu.Unlock()
		http.Error(w, "Extraction already in progress", http.StatusConflict)
		return
	}

	runner := batch.NewRunner(inputPath, outputBase).WithCatalog(h.db)

	// Reset progress state
	runProgress.isRunning = true
	runProgress.runner = runner
	runProgress.current = 0
	runProgress.total = 0
	runProgress.currentFile = ""
	runProgress.successful = 0
	runProgress.failed = 0
	runProgress.completed = false
	runProgress.err = nil
	runProgress.lastUpdate = time.Now()
	runProgress.mu.Unlock()

	// Run extraction in background
	go func() {
		defer func() {
			runProgress.mu.Lock()
			runProgress.isRunning = false
			runProgress.completed = true
			runProgress.runner = nil
			runProgress.mu.Unlock()
		}()

		stats, err := runner.RunWithProgress(func(current, total int, res batch.FileResult) {
			runProgress.mu.Lock()
			runProgress.current = current
			runProgress.total = total
			runProgress.currentFile = res.File
			if res.Status == batch.StatusExtracted {
				runProgress.successful++
			} else if res.Status == batch.StatusFailed {
				runProgress.failed++
			}
			runProgress.lastUpdate = time.Now()
			runProgress.mu.Unlock()

			// Broadcast to all SSE clients
			runProgress.broadcastProgress()
		})

		runProgress.mu.Lock()
		if err != nil {
			runProgress.err = err
			runProgress.mu.Unlock()
			runProgress.broadcastError(err)
			return
		}
		runProgress.mu.Unlock()

		// Broadcast completion
		runProgress.broadcastComplete(stats)
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "Extraction started")
}

// StopRun requests the running batch to stop between messages
func (h *Handlers) StopRun(w http.ResponseWriter, r *http.Request) {
	runProgress.mu.RLock()
	runner := runProgress.runner
	runProgress.mu.RUnlock()

	if runner == nil {
		http.Error(w, "No extraction in progress", http.StatusConflict)
		return
	}

	runner.Stop()
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "Stop requested")
}

// RunProgressSSE handles Server-Sent Events for extraction progress
func (h *Handlers) RunProgressSSE(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Create a channel for this client
	clientChan := make(chan ProgressEvent, 10)

	// Register client
	runProgress.mu.Lock()
	runProgress.progressClients = append(runProgress.progressClients, clientChan)

	// Send initial state if a run is in progress
	if runProgress.isRunning {
		initialData := map[string]interface{}{
			"current": runProgress.current,
			"total":   runProgress.total,
			"file":    runProgress.currentFile,
			"stats": map[string]int{
				"successful": runProgress.successful,
				"failed":     runProgress.failed,
			},
		}
		sendSSE(w, flusher, "progress", initialData)
	}
	runProgress.mu.Unlock()

	// Listen for updates or client disconnect
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			// Client disconnected, clean up
			runProgress.mu.Lock()
			for i, ch := range runProgress.progressClients {
				if ch == clientChan {
					runProgress.progressClients = append(runProgress.progressClients[:i], runProgress.progressClients[i+1:]...)
					break
				}
			}
			runProgress.mu.Unlock()
			close(clientChan)
			return

		case event := <-clientChan:
			sendSSE(w, flusher, event.Type, event.Data)

			// Close connection after complete or error
			if event.Type == "complete" || event.Type == "error" {
				return
			}
		}
	}
}

// broadcastProgress sends progress update to all connected clients
func (rp *RunProgress) broadcastProgress() {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	data := map[string]interface{}{
		"current": rp.current,
		"total":   rp.total,
		"file":    rp.currentFile,
		"stats": map[string]int{
			"successful": rp.successful,
			"failed":     rp.failed,
		},
	}

	event := ProgressEvent{
		Type: "progress",
		Data: data,
	}

	for _, client := range rp.progressClients {
		select {
		case client <- event:
		default:
			// Client channel full, skip
		}
	}
}

// broadcastComplete sends completion event to all connected clients
func (rp *RunProgress) broadcastComplete(stats *batch.Stats) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	data := map[string]interface{}{
		"total":      stats.Total,
		"successful": stats.Successful,
		"failed":     stats.Failed,
		"stopped":    stats.Stopped,
	}

	event := ProgressEvent{
		Type: "complete",
		Data: data,
	}

	for _, client := range rp.progressClients {
		select {
		case client <- event:
		default:
		}
	}
}

// broadcastError sends error event to all connected clients
func (rp *RunProgress) broadcastError(err error) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	data := map[string]interface{}{
		"error": err.Error(),
	}

	event := ProgressEvent{
		Type: "error",
		Data: data,
	}

	for _, client := range rp.progressClients {
		select {
		case client <- event:
		default:
		}
	}
}

// sendSSE sends an SSE message to the client
func sendSSE(w http.ResponseWriter, flusher http.Flusher, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling SSE data: %v", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}
