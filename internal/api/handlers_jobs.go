package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/413232903/markdown2word-mcp/internal/pipeline"
)

const jobsPath = "/api/markdown/jobs/"

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		jsonError(w, "markdown content is empty", http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob([]byte(req.Content), req.Title)
	if err := s.orchestrator.Submit(job); err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("job queued", "job_id", job.ID, "request_id", requestID(r))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": jobsPath + job.ID,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
