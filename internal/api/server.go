package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/413232903/markdown2word-mcp/internal/config"
	"github.com/413232903/markdown2word-mcp/internal/convert"
	"github.com/413232903/markdown2word-mcp/internal/pipeline"
)

// Server is the HTTP API of the conversion service.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	conv         *convert.Converter
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		orchestrator: orch,
		conv:         orch.Converter(),
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/markdown/convert/file", s.handleConvertFile)
		r.Post("/api/markdown/convert/text", s.handleConvertText)
		r.Get(convert.FilesPath+"{fileName}", s.handleDownload)

		r.Post("/api/markdown/jobs", s.handleSubmitJob)
		r.Get("/api/markdown/jobs/{jobID}", s.handleJobStatus)

		r.Post("/api/markdown/outline", s.handleOutline)
		r.Get("/api/stats/conversions", s.handleConversionStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
