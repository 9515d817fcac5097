package handlers

import (
	"fmt"
	"html"
	"log"
	"net/http"
)

// Search handles search requests over the extraction catalog
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.db.SearchExtractions(query, 50)
	if err != nil {
		log.Printf("Search error: %v", err)
		http.Error(w, fmt.Sprintf("Search failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	// Return HTML fragment for HTMX
	if len(results) == 0 {
		fmt.Fprintf(w, `
			<div class="empty-results">
				<p>No extractions found</p>
			</div>`)
		return
	}

	for _, result := range results {
		subject := result.Subject
		if subject == "" {
			subject = "(No Subject)"
		}

		snippet := result.Snippet
		if snippet == "" {
			snippet = truncate(result.Subject, 150)
		}

		fmt.Fprintf(w, `
			<div class="result-card">
				<a href="/extraction/%d">
					<div class="result-head">
						<h3>%s</h3>
						<span>%s</span>
					</div>
					<p>From: %s</p>
					<p>%s</p>
				</a>
			</div>`,
			result.ID,
			html.EscapeString(subject),
			html.EscapeString(result.Date),
			html.EscapeString(result.Sender),
			snippet, // Already contains HTML marks for highlighting
		)
	}
}
