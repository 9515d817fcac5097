package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"

	"github.com/felo/eml-extractor/internal/catalog"
	"github.com/felo/eml-extractor/internal/config"
	"github.com/microcosm-cc/bluemonday"
)

// Handlers holds all HTTP handlers and their dependencies
type Handlers struct {
	db           *catalog.DB
	cfg          *config.Config
	templates    *template.Template
	htmlPolicy   *bluemonday.Policy
	shutdownChan chan os.Signal
}

// New creates a new Handlers instance
func New(database *catalog.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		db:         database,
		cfg:        cfg,
		htmlPolicy: bluemonday.UGCPolicy(),
	}
}

// SetShutdownChannel wires the channel used by the shutdown endpoint
func (h *Handlers) SetShutdownChannel(ch chan os.Signal) {
	h.shutdownChan = ch
}

// LoadTemplates loads HTML templates from embedded filesystem
func (h *Handlers) LoadTemplates(embeddedFiles embed.FS) error {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"sanitizeHTML": func(s string) template.HTML {
			return template.HTML(h.htmlPolicy.Sanitize(s))
		},
	}).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return err
	}
	h.templates = tmpl
	return nil
}

// Shutdown asks the server process to exit
func (h *Handlers) Shutdown(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Shutting down")

	if h.shutdownChan != nil {
		h.shutdownChan <- os.Interrupt
	}
}

// truncate shortens text to maxLen characters for list views
func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
