package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/felo/eml-extractor/internal/extractor"
	"github.com/go-chi/chi/v5"
)

// attachmentInfo describes one file in a message's attachments directory
type attachmentInfo struct {
	Name string
	Size int64
}

// ViewExtraction displays one extraction record with body previews
// read back from the materialized artifacts
func (h *Handlers) ViewExtraction(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid extraction ID", http.StatusBadRequest)
		return
	}

	extraction, err := h.db.GetExtractionByID(id)
	if err != nil {
		log.Printf("Error loading extraction: %v", err)
		http.Error(w, "Failed to load extraction", http.StatusInternalServerError)
		return
	}
	if extraction == nil {
		http.Error(w, "Extraction not found", http.StatusNotFound)
		return
	}

	var plainBody, htmlBody string
	if extraction.HasPlainBody {
		if data, err := os.ReadFile(filepath.Join(extraction.OutputDir, extractor.PlainBodyFileName)); err == nil {
			plainBody = string(data)
		}
	}
	if extraction.HasHTMLBody {
		if data, err := os.ReadFile(filepath.Join(extraction.OutputDir, extractor.HTMLBodyFileName)); err == nil {
			htmlBody = string(data)
		}
	}

	attachments := listAttachments(extraction.OutputDir)

	pageTitle := "Extraction - EML Extractor"
	if extraction.Subject != "" && extraction.Subject != extractor.MissingHeaderValue {
		pageTitle = extraction.Subject + " - EML Extractor"
	}

	data := map[string]interface{}{
		"PageTitle":   pageTitle,
		"Extraction":  extraction,
		"PlainBody":   plainBody,
		"HTMLBody":    htmlBody, // sanitized in the template
		"Attachments": attachments,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "extraction.html", data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// listAttachments enumerates the files under a message's attachments directory
func listAttachments(outputDir string) []attachmentInfo {
	entries, err := os.ReadDir(filepath.Join(outputDir, extractor.AttachmentsDirName))
	if err != nil {
		return nil
	}

	var attachments []attachmentInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info := attachmentInfo{Name: entry.Name()}
		if fi, err := entry.Info(); err == nil {
			info.Size = fi.Size()
		}
		attachments = append(attachments, info)
	}
	return attachments
}

// DownloadAttachment serves one materialized attachment file
func (h *Handlers) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid extraction ID", http.StatusBadRequest)
		return
	}

	extraction, err := h.db.GetExtractionByID(id)
	if err != nil {
		http.Error(w, "Failed to load extraction", http.StatusInternalServerError)
		return
	}
	if extraction == nil {
		http.Error(w, "Extraction not found", http.StatusNotFound)
		return
	}

	// Materialized names are already sanitized, but the URL value is
	// attacker-controlled: never let it climb out of attachments/
	name := filepath.Base(chi.URLParam(r, "name"))
	path := filepath.Join(extraction.OutputDir, extractor.AttachmentsDirName, name)

	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "Attachment not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, name, extraction.ExtractedAt.Time, f)
}
