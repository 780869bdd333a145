package bill

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/bill-reader/internal/export"
)

const (
	maxUploadSize = int64(50 << 20) // 50MB
	maxTextSize   = int64(1 << 20)
)

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, export.ErrUnknownFormat), errors.Is(err, ErrNoScanner):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// contentTypeFor guesses an upload's MIME type from its extension
func contentTypeFor(filename string) string {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleListBills returns the bill history
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.service.ListBills()
	if err != nil {
		slog.Error("Error listing bills", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

// handleUploadBill handles a multipart upload of an image or PDF
func (s *Server) handleUploadBill(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			errorMsg = "File is too large. Maximum size is 50MB."
		}
		writeError(w, http.StatusBadRequest, errorMsg)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		writeError(w, http.StatusBadRequest, errorMsg)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusBadRequest, "File is too large. Maximum size is 50MB.")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(header.Filename)
	}

	bill, err := s.service.ProcessUpload(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing bill", "filename", header.Filename, "error", err)
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// scanner failures are reported back to the uploader
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, bill)
}

// handleSubmitText parses already transcribed text sent as JSON or plain text
func (s *Server) handleSubmitText(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTextSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error reading request body")
		return
	}

	text := string(body)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		text = req.Text
	}

	bill, err := s.service.ProcessText(text)
	if err != nil {
		slog.Error("Error processing text", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

// handleGetBill returns a single bill
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.service.GetBill(r.PathValue("id"))
	if err != nil {
		if statusFor(err) != http.StatusNotFound {
			slog.Error("Error getting bill", "id", r.PathValue("id"), "error", err)
		}
		writeError(w, statusFor(err), "Bill not found")
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// handleGetBillFile returns the uploaded file for a bill
func (s *Server) handleGetBillFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetBillFile(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), "File not found")
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleExportBill downloads a bill in the requested format
func (s *Server) handleExportBill(w http.ResponseWriter, r *http.Request) {
	id, format := r.PathValue("id"), r.PathValue("format")
	res, err := s.service.ExportBill(id, format)
	if err != nil {
		status := statusFor(err)
		message := "Error exporting bill"
		switch status {
		case http.StatusNotFound:
			message = "Bill not found"
		case http.StatusBadRequest:
			message = fmt.Sprintf("Unknown export format %q", format)
		}
		writeError(w, status, message)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Write(res.Data)
}

// handleDeleteBill deletes a bill
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteBill(r.PathValue("id")); err != nil {
		status := statusFor(err)
		if status != http.StatusNotFound {
			slog.Error("Error deleting bill", "id", r.PathValue("id"), "error", err)
		}
		writeError(w, status, "Error deleting bill")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearBills deletes the whole history
func (s *Server) handleClearBills(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearBills(); err != nil {
		slog.Error("Error clearing bills", "error", err)
		writeError(w, http.StatusInternalServerError, "Error clearing bills")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
