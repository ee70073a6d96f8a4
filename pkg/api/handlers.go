package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ssargent/tapebox/pkg/tape"
)

// maxProgramBody caps request bodies accepted by the save handler
const maxProgramBody = 64 << 20

// Server holds the API server state
type Server struct {
	store   TapeStore
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(store TapeStore, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
	}
}

// programName extracts and unescapes the {name} path parameter
func programName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	// chi routes on RawPath when the path holds escapes like %2F
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			return "", err
		}
		name = unescaped
	}
	if name == "" {
		return "", tape.ErrEmptyName
	}
	return name, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleSave stores the request body under the program name
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name, err := programName(r)
	if err != nil {
		s.metrics.RecordTapeOperation("save", false, time.Since(start))
		sendError(w, "Invalid program name", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProgramBody))
	if err != nil {
		s.metrics.RecordTapeOperation("save", false, time.Since(start))
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := s.store.SaveOrUpdate(name, body); err != nil {
		s.metrics.RecordTapeOperation("save", false, time.Since(start))
		switch {
		case errors.Is(err, tape.ErrEmptyName), errors.Is(err, tape.ErrInvalidEncoding), errors.Is(err, tape.ErrProgramTooLarge):
			sendError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, tape.ErrTapeTruncated):
			sendError(w, err.Error(), http.StatusConflict)
		default:
			log.WithError(err).WithField("name", name).Error("failed to save program")
			sendError(w, fmt.Sprintf("Failed to save program: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordTapeOperation("save", true, time.Since(start))
	sendSuccess(w, map[string]string{"message": fmt.Sprintf("Program %q saved to tape.", name)})
}

// handleLoad returns the raw payload of the first active program
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name, err := programName(r)
	if err != nil {
		s.metrics.RecordTapeOperation("load", false, time.Since(start))
		sendError(w, "Invalid program name", http.StatusBadRequest)
		return
	}

	data, err := s.store.Load(name)
	if err != nil {
		s.metrics.RecordTapeOperation("load", false, time.Since(start))
		if errors.Is(err, tape.ErrProgramNotFound) {
			sendError(w, "Program not found", http.StatusNotFound)
			return
		}
		sendError(w, fmt.Sprintf("Failed to load program: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordTapeOperation("load", true, time.Since(start))
	sendText(w, data)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name, err := programName(r)
	if err != nil {
		s.metrics.RecordTapeOperation("remove", false, time.Since(start))
		sendError(w, "Invalid program name", http.StatusBadRequest)
		return
	}

	removed, err := s.store.Remove(name)
	if err != nil {
		s.metrics.RecordTapeOperation("remove", false, time.Since(start))
		sendError(w, fmt.Sprintf("Failed to remove program: %v", err), http.StatusInternalServerError)
		return
	}
	if !removed {
		s.metrics.RecordTapeOperation("remove", false, time.Since(start))
		sendError(w, "Program not found", http.StatusNotFound)
		return
	}

	s.metrics.RecordTapeOperation("remove", true, time.Since(start))
	sendSuccess(w, map[string]string{"message": fmt.Sprintf("Program %q marked as deleted.", name)})
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name, err := programName(r)
	if err != nil {
		s.metrics.RecordTapeOperation("recover", false, time.Since(start))
		sendError(w, "Invalid program name", http.StatusBadRequest)
		return
	}

	recovered, err := s.store.Recover(name)
	if err != nil {
		s.metrics.RecordTapeOperation("recover", false, time.Since(start))
		sendError(w, fmt.Sprintf("Failed to recover program: %v", err), http.StatusInternalServerError)
		return
	}
	if !recovered {
		s.metrics.RecordTapeOperation("recover", false, time.Since(start))
		sendError(w, "Program not found or not deleted", http.StatusNotFound)
		return
	}

	s.metrics.RecordTapeOperation("recover", true, time.Since(start))
	sendSuccess(w, map[string]string{"message": fmt.Sprintf("Program %q recovered.", name)})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	programs, err := s.store.List()
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list programs: %v", err), http.StatusInternalServerError)
		return
	}
	if programs == nil {
		programs = []tape.ProgramInfo{}
	}

	sendSuccess(w, map[string]interface{}{"programs": programs})
}

// handleDebug renders the human readable tape dump
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	dump, err := s.store.DebugDump()
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to dump tape: %v", err), http.StatusInternalServerError)
		return
	}
	sendText(w, []byte(dump))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to read tape stats: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.UpdateTapeStats(stats)
	sendSuccess(w, stats)
}

// refreshTapeStats updates the tape gauges on every tick until ctx is done
func (s *Server) refreshTapeStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := s.store.Stats()
			if err != nil {
				log.WithError(err).Warn("failed to refresh tape metrics")
				continue
			}
			s.metrics.UpdateTapeStats(stats)
		}
	}
}
