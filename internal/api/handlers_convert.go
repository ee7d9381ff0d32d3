package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/413232903/markdown2word-mcp/internal/convert"
)

const docxType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

type textRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

type convertResponse struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

func (s *Server) handleConvertText(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	s.convert(w, r, []byte(req.Content), req.Title)
}

func (s *Server) handleConvertFile(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if !markdownExtensions[strings.ToLower(filepath.Ext(filename))] {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	s.convert(w, r, data, r.FormValue("title"))
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request, markdown []byte, title string) {
	res, err := s.conv.Convert(r.Context(), convert.Request{Markdown: markdown, Title: title})
	if err != nil {
		if errors.Is(err, convert.ErrEmptyInput) {
			jsonError(w, "markdown content is empty", http.StatusBadRequest)
			return
		}
		s.log.Error("conversion failed", "request_id", requestID(r), "error", err)
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(convertResponse{
		FileURL:  convert.FilesPath + res.FileName,
		FileName: res.FileName,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := sanitizeFilename(chi.URLParam(r, "fileName"))
	if !strings.EqualFold(filepath.Ext(name), ".docx") {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(filepath.Join(s.conv.OutputDir(), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "file not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to open file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", docxType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// decodeText reads a {"content": ...} body. It writes the error response
// itself and reports whether decoding succeeded.
func (s *Server) decodeText(w http.ResponseWriter, r *http.Request) (textRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return req, false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// readUpload returns the bytes and sanitised name of the multipart "file"
// field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, "", false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, "", false
	}
	return data, sanitizeFilename(header.Filename), true
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
