package ui

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"battwatch/domain/artifact"
	"battwatch/internal/dataset"
)

// uploadStatus is the view model for the upload result fragment.
type uploadStatus struct {
	OK      bool
	Kind    artifact.Kind
	Message string
}

// handleDatasetUpload accepts the combined battery dataset. CSV is
// persisted verbatim; XLSX is normalized to CSV before it lands on
// the fixed dataset path.
func (a *App) handleDatasetUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		log.Printf("[handleDatasetUpload] FAILED - no file in request: %v", err)
		a.uploadResult(w, r, uploadStatus{Kind: artifact.KindDataset, Message: "No file uploaded"})
		return
	}
	defer file.Close()

	kind := artifact.KindDataset
	if !kind.AcceptsExtension(header.Filename) {
		a.uploadResult(w, r, uploadStatus{Kind: kind, Message: fmt.Sprintf("Unsupported file type for %s (expected %v)", kind.Label(), kind.Extensions())})
		return
	}

	var payload io.Reader = file
	if isXLSX(header.Filename) {
		table, err := dataset.ReadTable(file, header.Filename)
		if err != nil {
			a.uploadResult(w, r, uploadStatus{Kind: kind, Message: fmt.Sprintf("Error reading workbook: %v", err)})
			return
		}
		var buf bytes.Buffer
		if err := table.ToCSV(&buf); err != nil {
			a.uploadResult(w, r, uploadStatus{Kind: kind, Message: fmt.Sprintf("Error converting workbook: %v", err)})
			return
		}
		payload = &buf
	}

	a.persistUpload(w, r, kind, header.Filename, payload)
}

// handleModelUpload accepts one of the three pre-trained model files,
// keyed by the {kind} route parameter.
func (a *App) handleModelUpload(w http.ResponseWriter, r *http.Request) {
	kind, err := artifact.ParseKind(chi.URLParam(r, "kind"))
	if err != nil || kind == artifact.KindDataset {
		http.Error(w, "Unknown model kind", http.StatusNotFound)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Printf("[handleModelUpload] FAILED - no file in request: %v", err)
		a.uploadResult(w, r, uploadStatus{Kind: kind, Message: "No file uploaded"})
		return
	}
	defer file.Close()

	if !kind.AcceptsExtension(header.Filename) {
		a.uploadResult(w, r, uploadStatus{Kind: kind, Message: fmt.Sprintf("Unsupported file type for %s (expected %v)", kind.Label(), kind.Extensions())})
		return
	}

	a.persistUpload(w, r, kind, header.Filename, file)
}

// persistUpload writes the payload to the kind's fixed path,
// records it in the registry and answers the form. Registry failures
// only warn; the artifact write is the source of truth.
func (a *App) persistUpload(w http.ResponseWriter, r *http.Request, kind artifact.Kind, originalName string, payload io.Reader) {
	size, sum, err := a.store.Save(kind, payload)
	if err != nil {
		log.Printf("[persistUpload] FAILED - could not persist %s: %v", kind, err)
		a.uploadResult(w, r, uploadStatus{Kind: kind, Message: fmt.Sprintf("Error uploading file: %v", err)})
		return
	}

	if kind == artifact.KindDataset {
		a.loader.Invalidate()
	}

	if a.registry != nil {
		upload := artifact.Upload{
			ID:           uuid.New().String(),
			Kind:         kind,
			OriginalName: originalName,
			Size:         size,
			SHA256:       sum,
			UploadedAt:   time.Now().UTC(),
		}
		if err := a.registry.Record(r.Context(), upload); err != nil {
			log.Printf("[persistUpload] WARN - registry record failed for %s: %v", kind, err)
		}
	}

	log.Printf("[persistUpload] %s uploaded: %d bytes, sha256=%s", kind.Label(), size, sum[:12])
	a.uploadResult(w, r, uploadStatus{OK: true, Kind: kind, Message: fmt.Sprintf("%s uploaded successfully (%d bytes)", kind.Label(), size)})
}

// uploadResult answers an upload request: an HTML fragment for HTMX
// forms, a redirect back to the home page otherwise.
func (a *App) uploadResult(w http.ResponseWriter, r *http.Request, status uploadStatus) {
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if !status.OK {
			w.WriteHeader(http.StatusBadRequest)
		}
		if err := a.templates.ExecuteTemplate(w, "upload_status.html", status); err != nil {
			log.Printf("Template error for upload_status.html: %v", err)
		}
		return
	}

	if status.OK {
		http.Redirect(w, r, "/?uploaded="+url.QueryEscape(string(status.Kind)), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?upload_error="+url.QueryEscape(status.Message), http.StatusSeeOther)
}

// isXLSX matches the same case-insensitive extension rule the kind's
// AcceptsExtension applies; anything accepted as .xlsx must also be
// converted before it lands on the fixed CSV path.
func isXLSX(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".xlsx")
}
