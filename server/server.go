// Package server exposes the ingestion service over HTTP: file upload
// endpoints per domain, row browsing, health and metrics.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Brunogomez94/siciap-cloud/config"
	"github.com/Brunogomez94/siciap-cloud/domain"
	"github.com/Brunogomez94/siciap-cloud/pipeline"
	"github.com/Brunogomez94/siciap-cloud/reader"
	"github.com/Brunogomez94/siciap-cloud/store"
)

// Server wires the HTTP surface to the ingestion pipeline and store.
type Server struct {
	store      *store.Store
	processors map[string]*pipeline.Processor
	maxUpload  int64
	defLimit   int
	maxLimit   int
	logger     zerolog.Logger
	startTime  time.Time
}

// New builds a Server with one processor per registered domain.
func New(st *store.Store, cfg config.IngestConfig, logger zerolog.Logger) *Server {
	processors := make(map[string]*pipeline.Processor)
	for _, spec := range domain.Specs() {
		processors[spec.Name] = pipeline.New(spec, st, logger)
	}
	return &Server{
		store:      st,
		processors: processors,
		maxUpload:  int64(cfg.MaxUploadKB) << 10,
		defLimit:   cfg.DefaultLimit,
		maxLimit:   cfg.MaxQueryLimit,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/import/{domain}", s.handleImport).Methods(http.MethodPost)
	r.HandleFunc("/tables/{domain}", s.handleBrowse).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["domain"]
	proc, ok := s.processors[name]
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown domain %q, expected one of %v", name, domain.Names()))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("reading upload: %w", err))
		return
	}

	res, err := proc.Process(r.Context(), data, header.Filename)
	if err != nil {
		filesProcessedTotal.WithLabelValues(name, "error").Inc()
		s.writeError(w, importStatus(err), err)
		return
	}

	filesProcessedTotal.WithLabelValues(name, "success").Inc()
	rowsInsertedTotal.WithLabelValues(name).Add(float64(res.RowsInserted))
	duplicatesRemovedTotal.WithLabelValues(name).Add(float64(res.DuplicatesRemoved))
	ingestDuration.WithLabelValues(name).Observe(res.Elapsed.Seconds())

	s.writeJSON(w, http.StatusOK, map[string]any{
		"domain":             res.Domain,
		"table":              res.Table,
		"batch_id":           res.BatchID,
		"rows_read":          res.RowsRead,
		"duplicates_removed": res.DuplicatesRemoved,
		"rows_inserted":      res.RowsInserted,
		"dropped_headers":    res.DroppedHeaders,
		"elapsed_ms":         res.Elapsed.Milliseconds(),
	})
}

// importStatus maps pipeline failures to HTTP statuses. Client-side
// file problems are 4xx, database problems 500.
func importStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, reader.ErrUnreadable):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNoColumnOverlap):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["domain"]
	spec, ok := domain.ByName(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown domain %q, expected one of %v", name, domain.Names()))
		return
	}

	limit := s.defLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > s.maxLimit {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	rows, err := s.store.ReadRows(r.Context(), spec.Table, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"domain": spec.Name,
		"table":  spec.Table,
		"count":  len(rows),
		"rows":   rows,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"service":        "siciap-ingester",
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"domains":        domain.Names(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("Request failed")
	} else {
		s.logger.Warn().Err(err).Msg("Request rejected")
	}
	s.writeJSON(w, status, map[string]any{"error": err.Error()})
}
