package handlers

import (
	"log"
	"net/http"
)

// Index handles the home page: catalog stats plus recent extractions
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetStats()
	if err != nil {
		http.Error(w, "Failed to get extraction stats", http.StatusInternalServerError)
		return
	}

	extractions, err := h.db.ListExtractions(50, 0)
	if err != nil {
		http.Error(w, "Failed to load extractions", http.StatusInternalServerError)
		return
	}

	var lastExtracted string
	if !stats.LastExtracted.IsZero() {
		lastExtracted = stats.LastExtracted.Format("Jan 2, 2006 3:04 PM")
	} else {
		lastExtracted = "Never"
	}

	data := map[string]interface{}{
		"PageTitle":   "Extractions - EML Extractor",
		"OutputBase":  h.cfg.OutputBase,
		"Stats":       stats,
		"LastRun":     lastExtracted,
		"Extractions": extractions,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
}
