package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/413232903/markdown2word-mcp/internal/outline"
)

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if !outline.Supported(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	o, err := outline.Read(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "failed to read outline: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename": filename,
		"count":    o.Count(),
		"outline":  o,
	})
}
