package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/escuriola/edaitorial/internal/app"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/registry"
	_ "github.com/escuriola/edaitorial/internal/server/docs" // swagger spec
	"github.com/escuriola/edaitorial/internal/tracker"
)

// maxBodyBytes bounds request bodies, content included.
const maxBodyBytes = 4 << 20

// Server is the HTTP + WebSocket API surface for edAItorial.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a Server on top of orch. The caller keeps ownership of
// orch and closes it after the HTTP server has shut down.
func NewServer(cfg Config, orch *app.Orchestrator) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/analyze", s.optionsHandler("POST"))
	r.Options("/gate", s.optionsHandler("POST"))
	r.Options("/nodes", s.optionsHandler("GET, POST"))
	r.Options("/nodes/crawl", s.optionsHandler("POST"))
	r.Options("/nodes/{id}", s.optionsHandler("GET, DELETE"))
	r.Options("/nodes/{id}/history", s.optionsHandler("GET"))
	r.Options("/nodes/{id}/compare", s.optionsHandler("GET"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/analyze", s.optionsHandler("POST"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/cache/purge", s.optionsHandler("POST"))

	r.Get("/healthz", s.handleHealth)

	// Analysis
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/gate", s.handleGate)

	// Nodes
	r.Post("/nodes", s.handleCreateNode)
	r.Get("/nodes", s.handleListNodes)
	r.Post("/nodes/crawl", s.handleCrawlNodes)
	r.Get("/nodes/{id}", s.handleGetNode)
	r.Delete("/nodes/{id}", s.handleDeleteNode)
	r.Get("/nodes/{id}/history", s.handleNodeHistory)
	r.Get("/nodes/{id}/compare", s.handleCompare)

	// Jobs over REST
	r.Post("/jobs/analyze", s.handleStartAnalyzeJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	r.Post("/cache/purge", s.handlePurgeCache)

	// WebSockets
	r.Get("/ws/analyze", s.handleAnalyzeWS)
	r.Get("/ws/jobs/analyze", s.handleAnalyzeJobWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) originAllowed(origin string) bool {
	return len(s.cfg.AllowedOrigins) == 0 || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.cfg.AllowedOrigins) == 0 {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin := r.Header.Get("Origin"); s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	// Bodies carry whole articles, so only their size is logged.
	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1)); err == nil {
			fields = append(fields, logging.Field{Key: "body_bytes", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNodeNotFound),
		errors.Is(err, tracker.ErrEntryNotFound),
		errors.Is(err, app.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrNoHistory):
		return http.StatusConflict
	case errors.Is(err, registry.ErrTitleEmpty),
		errors.Is(err, tracker.ErrNodeIDEmpty),
		errors.Is(err, tracker.ErrNodeIDMismatch),
		errors.Is(err, app.ErrInvalidCrawlRoot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Warn(msg, logging.Field{Key: "error", Value: err.Error()})
	writeError(w, statusFor(err), err.Error())
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Analysis

// handleAnalyze godoc
// @Summary Analyze content
// @Description Runs the analysis pipeline and returns the scored result. Pipeline failures yield a fail-safe result, never an error.
// @Tags analysis
// @Accept json
// @Produce json
// @Param content body AnalyzeRequest true "Content to analyze"
// @Success 200 {object} model.AnalysisResult
// @Failure 400 {object} ErrorResponse
// @Router /analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if err := decodeBody(r, &body); err != nil {
		s.logger.Warn("decoding analyze body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res := s.orchestrator.AnalyzeNode(r.Context(), body.Content())
	s.logger.Info("analyzed content",
		logging.Field{Key: "node_id", Value: body.NodeID},
		logging.Field{Key: "score", Value: res.OverallScore},
		logging.Field{Key: "source", Value: res.Source})
	writeJSON(w, http.StatusOK, res)
}

// handleGate godoc
// @Summary Check whether content may be published
// @Tags analysis
// @Accept json
// @Produce json
// @Param content body AnalyzeRequest true "Content to check"
// @Success 200 {object} gate.Decision
// @Failure 400 {object} ErrorResponse
// @Router /gate [post]
func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if err := decodeBody(r, &body); err != nil {
		s.logger.Warn("decoding gate body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	d := s.orchestrator.CheckPublish(r.Context(), body.Content())
	s.logger.Info("publish check",
		logging.Field{Key: "node_id", Value: body.NodeID},
		logging.Field{Key: "allowed", Value: d.Allowed},
		logging.Field{Key: "score", Value: d.Score})
	writeJSON(w, http.StatusOK, d)
}

// Nodes

// handleCreateNode godoc
// @Summary Register or update a node
// @Tags nodes
// @Accept json
// @Produce json
// @Param node body CreateNodeRequest true "Node"
// @Success 201 {object} model.Node
// @Failure 400 {object} ErrorResponse
// @Router /nodes [post]
func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var body CreateNodeRequest
	if err := decodeBody(r, &body); err != nil {
		s.logger.Warn("decoding create node body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	n, err := s.orchestrator.AddNode(r.Context(), model.Node{
		ID:          body.ID,
		Title:       body.Title,
		URL:         body.URL,
		ContentType: body.ContentType,
	})
	if err != nil {
		s.fail(w, "creating node", err)
		return
	}
	s.logger.Info("created node", logging.Field{Key: "node_id", Value: n.ID})
	writeJSON(w, http.StatusCreated, n)
}

// handleCrawlNodes godoc
// @Summary Crawl a site and register its pages as nodes
// @Tags nodes
// @Accept json
// @Produce json
// @Param request body CrawlNodesRequest true "Crawl root"
// @Success 200 {array} model.Node
// @Failure 400 {object} ErrorResponse
// @Router /nodes/crawl [post]
func (s *Server) handleCrawlNodes(w http.ResponseWriter, r *http.Request) {
	var body CrawlNodesRequest
	if err := decodeBody(r, &body); err != nil {
		s.logger.Warn("decoding crawl body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	depth := -1
	if body.Depth != nil {
		depth = *body.Depth
	}

	nodes, err := s.orchestrator.CrawlNodes(r.Context(), body.URL, depth)
	if err != nil && len(nodes) == 0 {
		s.fail(w, "crawling nodes", err)
		return
	}
	if err != nil {
		s.logger.Warn("crawl ended early", logging.Field{Key: "error", Value: err.Error()})
	}
	if nodes == nil {
		nodes = []model.Node{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

// handleListNodes godoc
// @Summary List nodes, most recently updated first
// @Tags nodes
// @Produce json
// @Param limit query int false "Maximum number of nodes"
// @Success 200 {array} model.Node
// @Router /nodes [get]
func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.orchestrator.ListNodes(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		s.fail(w, "listing nodes", err)
		return
	}
	if nodes == nil {
		nodes = []model.Node{}
	}
	s.logger.Info("listed nodes", logging.Field{Key: "count", Value: len(nodes)})
	writeJSON(w, http.StatusOK, nodes)
}

// handleGetNode godoc
// @Summary Get a node
// @Tags nodes
// @Produce json
// @Param id path string true "Node ID"
// @Success 200 {object} model.Node
// @Failure 404 {object} ErrorResponse
// @Router /nodes/{id} [get]
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.orchestrator.GetNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "getting node", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleDeleteNode godoc
// @Summary Delete a node
// @Tags nodes
// @Param id path string true "Node ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /nodes/{id} [delete]
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.orchestrator.DeleteNode(r.Context(), id); err != nil {
		s.fail(w, "deleting node", err)
		return
	}
	s.logger.Info("deleted node", logging.Field{Key: "node_id", Value: id})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleNodeHistory godoc
// @Summary Analysis history of a node, newest first
// @Tags nodes
// @Produce json
// @Param id path string true "Node ID"
// @Param limit query int false "Maximum number of entries"
// @Success 200 {array} tracker.Entry
// @Router /nodes/{id}/history [get]
func (s *Server) handleNodeHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entries, err := s.orchestrator.History(r.Context(), id, queryInt(r, "limit", 0))
	if err != nil {
		s.fail(w, "listing history", err)
		return
	}
	if entries == nil {
		entries = []*tracker.Entry{}
	}
	s.logger.Info("listed history", logging.Field{Key: "node_id", Value: id}, logging.Field{Key: "count", Value: len(entries)})
	writeJSON(w, http.StatusOK, entries)
}

// handleCompare godoc
// @Summary Compare two analyses of a node
// @Description Without query parameters the two most recent analyses are compared.
// @Tags nodes
// @Produce json
// @Param id path string true "Node ID"
// @Param base query string false "Base history entry ID"
// @Param head query string false "Head history entry ID"
// @Success 200 {object} tracker.Comparison
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /nodes/{id}/compare [get]
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	base, head := r.URL.Query().Get("base"), r.URL.Query().Get("head")

	var (
		cmp *tracker.Comparison
		err error
	)
	switch {
	case base == "" && head == "":
		cmp, err = s.orchestrator.Compare(r.Context(), id)
	case base == "" || head == "":
		writeError(w, http.StatusBadRequest, "base and head must be given together")
		return
	default:
		cmp, err = s.orchestrator.CompareEntries(r.Context(), base, head)
		if err == nil && cmp.NodeID != id {
			err = fmt.Errorf("%w: entries belong to %s", tracker.ErrNodeIDMismatch, cmp.NodeID)
		}
	}
	if err != nil {
		s.fail(w, "comparing analyses", err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// Jobs (REST)

// handleStartAnalyzeJob godoc
// @Summary Analyze a batch of content in the background
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body StartAnalyzeJobRequest true "Contents"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Router /jobs/analyze [post]
func (s *Server) handleStartAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	var body StartAnalyzeJobRequest
	if err := decodeBody(r, &body); err != nil {
		s.logger.Warn("decoding analyze job body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(body.Contents) == 0 {
		writeError(w, http.StatusBadRequest, "contents is empty")
		return
	}

	job, err := s.orchestrator.StartAnalyzeJob(r.Context(), contentsOf(body.Contents))
	if err != nil {
		s.fail(w, "starting analyze job", err)
		return
	}
	s.logger.Info("started analyze job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "total", Value: job.Total})
	writeJSON(w, http.StatusAccepted, s.snapshot(job))
}

// snapshot returns a copy of job that is safe to encode while it runs.
func (s *Server) snapshot(job *app.Job) *app.Job {
	if snap, err := s.orchestrator.GetJob(job.ID); err == nil {
		return snap
	}
	return job
}

func contentsOf(reqs []AnalyzeRequest) []model.Content {
	out := make([]model.Content, len(reqs))
	for i, req := range reqs {
		out[i] = req.Content()
	}
	return out
}

// handleGetJob godoc
// @Summary Get job status and results
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if err != nil {
		s.fail(w, "getting job", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob godoc
// @Summary Cancel a running job
// @Tags jobs
// @Param jobID path string true "Job ID"
// @Success 204
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.orchestrator.CancelJob(jobID)
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleListJobs godoc
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	s.logger.Info("listed jobs", logging.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, jobs)
}

// handlePurgeCache godoc
// @Summary Drop expired analysis cache entries
// @Tags system
// @Produce json
// @Success 200 {object} PurgeCacheResponse
// @Router /cache/purge [post]
func (s *Server) handlePurgeCache(w http.ResponseWriter, r *http.Request) {
	n, err := s.orchestrator.PurgeCache(r.Context())
	if err != nil {
		s.fail(w, "purging cache", err)
		return
	}
	s.logger.Info("purged cache", logging.Field{Key: "purged", Value: n})
	writeJSON(w, http.StatusOK, PurgeCacheResponse{Purged: n})
}

// WebSockets

// handleAnalyzeWS answers every AnalyzeRequest message with its
// AnalysisResult until the client closes the connection.
func (s *Server) handleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	ctx := r.Context()
	for {
		var req AnalyzeRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read", logging.Field{Key: "error", Value: err.Error()})
			}
			return
		}
		res := s.orchestrator.AnalyzeNode(ctx, req.Content())
		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}
}

// handleAnalyzeJobWS reads one StartAnalyzeJobRequest, starts the job and
// streams its events until the job ends.
func (s *Server) handleAnalyzeJobWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	var body StartAnalyzeJobRequest
	if err := conn.ReadJSON(&body); err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: "invalid JSON"})
		return
	}

	job, err := s.orchestrator.StartAnalyzeJob(r.Context(), contentsOf(body.Contents))
	if err != nil {
		s.logger.Warn("starting analyze job", logging.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started analyze job", logging.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(s.snapshot(job))

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
}
